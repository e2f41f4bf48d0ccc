package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
	"github.com/synaptica-ai/transfusion-vitals/pkg/dataservice"
)

type errorBody struct {
	Error     string   `json:"error"`
	Attempted []string `json:"attempted,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}

// writeError maps loader and validation errors to status codes: unknown codes
// and bad parameters are 400, missing files 404, unreadable files 502.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound *csvsource.NotFoundError
		parseErr *csvsource.ParseError
		status   = http.StatusInternalServerError
		body     = errorBody{Error: err.Error()}
	)

	switch {
	case errors.Is(err, dataservice.ErrUnknownVital),
		errors.Is(err, dataservice.ErrUnknownFactor),
		errors.Is(err, dataservice.ErrInvalidSpan),
		errors.Is(err, errBadParam):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		body.Attempted = notFound.Paths()
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
	}

	entry := logger.Log.WithError(err).WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	writeJSONStatus(w, status, body)
}
