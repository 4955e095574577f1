package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "fantasy-roster"

	internalErrorMessage = "internal server error"
)

var errUploadTooLarge = errors.New("upload too large")

// envelope follows the Google JSON style guide: exactly one of data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorRule struct {
	target error
	status int
	reason string
	code   string
	// expose keeps the error text on a 5xx response.
	expose bool
}

// errorRules is checked in order; the first errors.Is match wins.
var errorRules = []errorRule{
	{target: errUploadTooLarge, status: http.StatusRequestEntityTooLarge, reason: "uploadTooLarge", code: "INVALID_ARGUMENT"},
	{target: roster.ErrUnknownFormat, status: http.StatusBadRequest, reason: "unknownFormat", code: "INVALID_ARGUMENT"},
	{target: roster.ErrMalformedFile, status: http.StatusBadRequest, reason: "malformedFile", code: "INVALID_ARGUMENT"},
	{target: usecase.ErrInvalidInput, status: http.StatusBadRequest, reason: "invalidInput", code: "INVALID_ARGUMENT"},
	{target: usecase.ErrNotFound, status: http.StatusNotFound, reason: "notFound", code: "NOT_FOUND"},
	{target: usecase.ErrProjectionsUnavailable, status: http.StatusServiceUnavailable, reason: "projectionsUnavailable", code: "UNAVAILABLE"},
	{target: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable, reason: "dependencyUnavailable", code: "UNAVAILABLE"},
	{target: player.ErrIdentityConflict, status: http.StatusInternalServerError, reason: "identityConflict", code: "INTERNAL", expose: true},
}

var internalRule = errorRule{status: http.StatusInternalServerError, reason: "internalError", code: "INTERNAL"}

func mapError(err error) errorRule {
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule
		}
	}
	return internalRule
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// fail writes the error envelope for err. Unmapped server errors are logged
// and answered with a generic message.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	rule := mapError(err)
	msg := err.Error()
	if rule.status >= http.StatusInternalServerError && !rule.expose {
		h.logger.ErrorContext(ctx, "request failed", "error", err)
		msg = internalErrorMessage
	}
	writeFailure(w, rule, msg)
}

func writeInternalError(w http.ResponseWriter) {
	writeFailure(w, internalRule, internalErrorMessage)
}

func writeFailure(w http.ResponseWriter, rule errorRule, msg string) {
	writeJSON(w, rule.status, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    rule.status,
			Message: msg,
			Status:  rule.code,
			Errors:  []errorItem{{Domain: errorDomain, Reason: rule.reason, Message: msg}},
		},
	})
}
