package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

type contextKey string

const userIDKey contextKey = "userID"

const SessionName = "arttrack_session"

// Store is the process-wide session store, set once at startup.
var Store sessions.Store

// UserMiddleware resolves the caller's identity from the user-id header,
// falling back to the session cookie, and puts it on the request context.
// A request with neither is rejected with 400 (missing required header).
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("user-id")
		if userID == "" && Store != nil {
			if session, err := Store.Get(r, SessionName); err == nil {
				if v, ok := session.Values["user_id"].(string); ok {
					userID = v
				}
			}
		}
		if userID == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the identity placed on the context by UserMiddleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
