package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Error codes carried in the "code" member of error responses.
const (
	CodeInvalidBody   = "INVALID_BODY"
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeRejected      = "REJECTED"
	CodeUnknownFormat = "UNKNOWN_FORMAT"
	CodeInternal      = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var structuralErrors = []error{
	model.ErrEmptyLabel,
	model.ErrEmptyID,
	model.ErrDuplicateID,
	model.ErrInvalidFieldType,
	model.ErrUnknownValidator,
	model.ErrDuplicateValidator,
	model.ErrValidatorValueMissing,
	model.ErrValidatorNotApplicable,
	model.ErrOptionsNotSupported,
	model.ErrDuplicateOption,
	model.ErrEmptyOption,
	model.ErrNestedGroup,
	model.ErrNilElement,
	model.ErrGroupNotInTree,
	model.ErrInvalidDefinition,
}

// StatusFor maps an error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, editor.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, render.ErrUnknownFormat):
		return http.StatusNotFound, CodeUnknownFormat
	case errors.Is(err, editor.ErrRejected):
		return http.StatusConflict, CodeRejected
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, CodeInvalidBody
	}
	for _, target := range structuralErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, CodeValidation
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

var errInvalidBody = errors.New("invalid request body")

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		message = "internal server error"
	}
	s.writeJSON(w, status, errorBody{Error: message, Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}
