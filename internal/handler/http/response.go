package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jkstudio99/DropStockAPI/pkg/validator"
)

// validationErrorResponse is the body written when request validation fails.
type validationErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Status:  "Error",
			Message: "validation failed",
			Fields:  vErr.Fields(),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Status:  "Error",
		Message: err.Error(),
	})
}
