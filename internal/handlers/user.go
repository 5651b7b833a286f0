package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/arttrack/arttrack/internal/auth"
	"github.com/arttrack/arttrack/internal/store"
	"github.com/arttrack/arttrack/models"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler creates an account on the first successful login for an
// unseen username and verifies credentials afterwards. When two first
// logins race, the unique constraint lets exactly one insert win; the
// loser falls back to credential verification against the winner's row.
func LoginHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Username and password are required"})
		return
	}

	user, err := store.UserByUsername(r.Context(), db, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("Failed to hash password:", err)
			respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
			return
		}
		newUser := &models.User{Username: req.Username, PasswordHash: string(hash)}
		switch err := store.CreateUser(r.Context(), db, newUser); {
		case err == nil:
			saveSession(w, r, newUser.ID)
			respondJSON(w, http.StatusCreated, map[string]any{"message": "Account created!", "userId": newUser.ID})
			return
		case errors.Is(err, store.ErrConflict):
			// Lost the race; the username exists now.
			user, err = store.UserByUsername(r.Context(), db, req.Username)
			if err != nil {
				log.Println("Database error:", err)
				respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
				return
			}
		default:
			log.Println("Failed to create user:", err)
			respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
			return
		}
	} else if err != nil {
		log.Println("Database error:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		return
	}

	saveSession(w, r, user.ID)
	respondJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "userId": user.ID})
}

// OAuthCallbackHandler completes a goth sign-in and upserts a user keyed
// by the provider email. OAuth accounts get an unusable random password
// hash so the password login path can never match them by accident.
func OAuthCallbackHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Println("OAuth callback failed:", err)
		respondJSON(w, http.StatusUnauthorized, map[string]any{"message": "Authentication failed"})
		return
	}

	username := oauthUsername(gothUser.Email)
	user, err := store.UserByUsername(r.Context(), db, username)
	if errors.Is(err, store.ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
			return
		}
		user = &models.User{Username: username, PasswordHash: string(hash)}
		if err := store.CreateUser(r.Context(), db, user); err != nil {
			if !errors.Is(err, store.ErrConflict) {
				log.Println("Failed to create user:", err)
				respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
				return
			}
			user, err = store.UserByUsername(r.Context(), db, username)
			if err != nil {
				log.Println("Database error:", err)
				respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
				return
			}
		}
	} else if err != nil {
		log.Println("Database error:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	saveSession(w, r, user.ID)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// oauthUsername derives a username from a provider email, bounded to the
// column size.
func oauthUsername(email string) string {
	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}

func saveSession(w http.ResponseWriter, r *http.Request, userID uint) {
	if auth.Store == nil {
		return
	}
	session, err := auth.Store.Get(r, auth.SessionName)
	if err != nil {
		log.Println("Failed to get session:", err)
		return
	}
	session.Values["user_id"] = strconv.FormatUint(uint64(userID), 10)
	if err := session.Save(r, w); err != nil {
		log.Println("Failed to save session:", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
