package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixora/projectledger/internal/domain"
)

// Envelope is the JSON body of every response
type Envelope struct {
	Status   bool        `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Code     string      `json:"code,omitempty"`
	Blockers int         `json:"blockers,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, Envelope{Status: false, Message: message, Code: code})
}

// writeError maps an engine error onto a status code and envelope
func writeError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	envelope := Envelope{
		Status:  false,
		Message: domainErr.Message,
		Code:    string(domainErr.Kind),
	}
	if domainErr.Kind == domain.KindReferentialBlock {
		envelope.Blockers = domainErr.Blockers
	}

	writeJSON(w, StatusFor(domainErr.Kind), envelope)
}

// StatusFor returns the HTTP status for an error kind
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindReferentialBlock:
		return http.StatusConflict
	case domain.KindAllocationConflict, domain.KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
