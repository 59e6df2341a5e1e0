package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/types"
)

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeError maps a service error to its HTTP status and wire error code.
// Anything that is not a *types.Error is reported as an internal error
// without leaking its message.
func writeError(w http.ResponseWriter, err error) {
	var terr *types.Error
	if !errors.As(err, &terr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			ErrorCode: string(types.InternalServiceError),
			Message:   "internal service error",
		})
		return
	}
	writeJSON(w, terr.StatusCode, ErrorResponse{
		ErrorCode: string(terr.ErrorCode),
		Message:   terr.Error(),
	})
}
