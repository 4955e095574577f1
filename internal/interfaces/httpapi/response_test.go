package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

func testHandler() *Handler {
	return NewHandler(nil, nil, nil, 0, logging.NewNop())
}

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestFail_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler().fail(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestFail_HidesUnmappedErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler().fail(context.Background(), rec, errors.New("pq: connection refused to 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body testEnvelope[any]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Message != internalErrorMessage {
		t.Fatalf("expected generic message, got=%+v", body.Error)
	}
}

func TestFail_ExposesIdentityConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	err := player.NewIdentityConflict(player.NamespaceFantrax, "*04x1z*", "p-1")
	testHandler().fail(context.Background(), rec, err)

	body := decodeEnvelope[any](t, rec)
	if rec.Code != http.StatusInternalServerError || body.Error == nil {
		t.Fatalf("unexpected response: code=%d body=%s", rec.Code, rec.Body.String())
	}
	if body.Error.Message != err.Error() || body.Error.Errors[0].Reason != "identityConflict" {
		t.Fatalf("expected conflict details, got=%+v", body.Error)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{
			name:   "unknown format inside invalid input",
			err:    fmt.Errorf("%w: %w", usecase.ErrInvalidInput, crerr.Wrap(roster.ErrUnknownFormat, "no dialect")),
			status: http.StatusBadRequest,
			reason: "unknownFormat",
		},
		{
			name:   "malformed file",
			err:    crerr.Wrapf(roster.ErrMalformedFile, "missing columns"),
			status: http.StatusBadRequest,
			reason: "malformedFile",
		},
		{
			name:   "identity conflict",
			err:    fmt.Errorf("import roster: %w", player.NewIdentityConflict(player.NamespaceFantrax, "*04x1z*", "p-1")),
			status: http.StatusInternalServerError,
			reason: "identityConflict",
		},
		{
			name:   "projections unavailable",
			err:    fmt.Errorf("%w: ros projections: timeout", usecase.ErrProjectionsUnavailable),
			status: http.StatusServiceUnavailable,
			reason: "projectionsUnavailable",
		},
		{
			name:   "upload too large",
			err:    fmt.Errorf("%w: file exceeds 10 bytes", errUploadTooLarge),
			status: http.StatusRequestEntityTooLarge,
			reason: "uploadTooLarge",
		},
		{
			name:   "unmapped",
			err:    errors.New("disk full"),
			status: http.StatusInternalServerError,
			reason: "internalError",
		},
		{
			name:   "not found",
			err:    fmt.Errorf("%w: upload=u-9", usecase.ErrNotFound),
			status: http.StatusNotFound,
			reason: "notFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.status != tt.status || got.reason != tt.reason {
				t.Fatalf("mapError()=%+v want status=%d reason=%s", got, tt.status, tt.reason)
			}
		})
	}
}
