package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/princebabou/wishCraft/internal/middleware"
	"github.com/princebabou/wishCraft/internal/models"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, details string) {
	writeJSON(w, r, status, models.ErrorResponse{Error: msg, Details: details})
}
