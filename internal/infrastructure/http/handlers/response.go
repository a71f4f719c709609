// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError answers with the AppError status and error envelope
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		logger.Error("Unhandled error", zap.Error(err))
		appErr = errors.NewInternalError("unexpected error").WithCause(err)
	} else if appErr.StatusCode() >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Object("error", appErr),
			zap.String("path", r.URL.Path),
			zap.String("origin", appErr.Stack()),
		)
	}

	details := errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())).Error
	writeJSON(w, logger, appErr.StatusCode(), APIResponse{
		Success: false,
		Error:   &details,
		Message: appErr.Message,
	})
}

// decodeJSON reads a single JSON document and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewBadRequestError("request body is empty")
		}
		return errors.NewBadRequestError(fmt.Sprintf("malformed request body: %v", err))
	}

	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(err.Error())
	}

	problems := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, errors.ValidationError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()),
		})
	}
	return errors.NewValidationErrors(problems)
}

// pathUUID parses a UUID route parameter
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, errors.NewBadRequestError(fmt.Sprintf("%s must be a UUID", param))
	}
	return id, nil
}
