package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/connectors"
	"terminalfleet/src/externalmodel"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Anything
// unrecognized is logged with full context server-side and surfaced as
// a generic failure; error bodies never carry credentials or
// ciphertext.
func respondError(w http.ResponseWriter, err error) {
	var validation *externalmodel.ValidationError
	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: validation.Fields,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, connectors.ErrProviderUnavailable):
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "upstream temporarily unavailable, retry later"})
	default:
		logger.WithError(err).Error("Unhandled error in request")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
