package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/johndosdos/atalaia/internal/database"
)

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

// respondStoreError maps a database error to a status code and logs the
// ones that are not the caller's fault.
func respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case database.IsNotFound(err):
		respondError(w, http.StatusNotFound, what+" not found.")
	case database.IsUniqueViolation(err):
		respondError(w, http.StatusConflict, what+" already exists.")
	default:
		log.Printf("database error: %v", err)
		respondError(w, http.StatusInternalServerError, "Database error.")
	}
}

var errInvalidJSON = errors.New("invalid JSON body")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}
