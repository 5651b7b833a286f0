package handlers

import (
	"log"
	"net/http"

	"github.com/arttrack/arttrack/internal/scanner"
)

// ScanHandler forwards a scan request to the external similarity-scan
// service. Match rows are written by that service, never here.
func ScanHandler(w http.ResponseWriter, r *http.Request, scan *scanner.Client) {
	result, err := scan.Trigger(r.Context())
	if err != nil {
		log.Println("Scan trigger failed:", err)
		respondJSON(w, http.StatusBadGateway, map[string]any{"message": "Scan service unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": result.Message})
}
