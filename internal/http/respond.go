package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/madstore/madstore-api/internal/payment"
	"github.com/madstore/madstore-api/internal/repository"
	"github.com/madstore/madstore-api/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service and repository errors into HTTP
// responses. Only client-input and authentication failures surface as 4xx;
// anything unrecognized is an internal error.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionIDRequired),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrCartCodeMissing),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrBuyerNameRequired),
		errors.Is(err, service.ErrAddressRequired),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, payment.ErrSignatureInvalid),
		errors.Is(err, payment.ErrMalformedEvent):
		respondError(w, http.StatusBadRequest, "invalid_signature", err.Error())
	case errors.Is(err, payment.ErrSessionNotFound):
		respondError(w, http.StatusBadRequest, "invalid_session", err.Error())
	case errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrCartItemNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		logger.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
