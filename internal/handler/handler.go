package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"order-service/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response carrying the request ID as correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := chimiddleware.GetReqID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: requestID,
	})
}

// writeServiceError maps an error returned by a service to a status code and error body.
// Errors that are not domain errors are reported as 500 without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var stockErr *model.OutOfStockError
	if errors.As(err, &stockErr) {
		writeError(w, r, http.StatusConflict, model.ErrCodeOutOfStock, stockErr.Error(), logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case model.ErrCodeInvalidJSON, model.ErrCodeInvalidRequest, model.ErrCodeInvalidQuantity, model.ErrCodeEmptyOrder:
			writeError(w, r, http.StatusBadRequest, domainErr.Code, domainErr.Message, logger)
			return
		case model.ErrCodeCustomerNotFound, model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound:
			writeError(w, r, http.StatusNotFound, domainErr.Code, domainErr.Message, logger)
			return
		case model.ErrCodeOutOfStock:
			writeError(w, r, http.StatusConflict, domainErr.Code, domainErr.Message, logger)
			return
		}
	}

	logger.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg("unhandled service error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// uuidParam parses the named URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format", name)
	}

	return id, nil
}
