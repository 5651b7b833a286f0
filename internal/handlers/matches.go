package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/arttrack/arttrack/internal/matches"
	"github.com/go-chi/chi/v5"
)

// GetMatchesForUserHandler returns the user's matches enriched with
// provenance URLs. No images and no matches are both expected outcomes
// and map to 404; only storage trouble is a 500.
func GetMatchesForUserHandler(w http.ResponseWriter, r *http.Request, svc *matches.Service) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid user ID"})
		return
	}

	enriched, err := svc.MatchesForUser(r.Context(), uint(userID))
	switch {
	case errors.Is(err, matches.ErrNoImages):
		respondJSON(w, http.StatusNotFound, map[string]any{"message": "No images found for the user."})
		return
	case errors.Is(err, matches.ErrNoMatches):
		respondJSON(w, http.StatusNotFound, map[string]any{"message": "No matches found."})
		return
	case err != nil:
		log.Println("Error fetching matches:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "An error occurred while fetching matches."})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"matches": enriched})
}
