package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

const defaultMaxUploadBytes int64 = 10 << 20

type Handler struct {
	importService     *usecase.RosterImportService
	rosterService     *usecase.RosterService
	projectionService *usecase.ProjectionService
	maxUploadBytes    int64
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	importService *usecase.RosterImportService,
	rosterService *usecase.RosterService,
	projectionService *usecase.ProjectionService,
	maxUploadBytes int64,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{
		importService:     importService,
		rosterService:     rosterService,
		projectionService: projectionService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	_, span := handlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
