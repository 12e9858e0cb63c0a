package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"courtside/errors"

	"github.com/go-playground/validator/v10"
)

func requestBody[TRequest any](r *http.Request) (TRequest, error) {
	var request TRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	return request, err
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case stderrors.As(err, &validationErrs),
		stderrors.Is(err, errors.ErrEmptyMessage),
		stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrUnsupportedImage):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case stderrors.Is(err, errors.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case stderrors.Is(err, errors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case stderrors.Is(err, errors.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
