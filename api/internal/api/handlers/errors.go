package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HandleError maps domain failures to HTTP responses.
// 🛡️ Anything unrecognised becomes a generic 500; the cause is only logged.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Validation failed", Fields: fields})
		return
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, errBadJSON):
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
	case errors.Is(err, domain.ErrWeakPassword), errors.Is(err, domain.ErrPasswordMismatch):
		writeError(w, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, domain.ErrInvalidPayload):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrReportDecryption):
		writeError(w, http.StatusUnauthorized, domain.ErrReportDecryption.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, rootMessage(err))
	case errors.Is(err, domain.ErrStorageVersion):
		writeError(w, http.StatusConflict, "Stored data was written by a newer version")
	case errors.Is(err, domain.ErrCryptoUnavailable):
		logInternal(r, err)
		writeError(w, http.StatusServiceUnavailable, "Encryption is unavailable, please try again")
	default:
		logInternal(r, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func logInternal(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
}

// rootMessage strips wrapping context so only the sentinel text reaches the client.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrWeakPassword, domain.ErrPasswordMismatch,
		domain.ErrAlreadyExists, domain.ErrConcurrencyConflict,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// decodeJSON reads a request body into dst, surfacing oversized bodies as-is.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errBadJSON
	}
	return nil
}

var errBadJSON = errors.New("invalid JSON payload")

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
