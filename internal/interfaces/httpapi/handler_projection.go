package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

func pathHorizon(r *http.Request) (projection.Horizon, error) {
	h, err := projection.ParseHorizon(r.PathValue("horizon"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return h, nil
}

func (h *Handler) LookupProjection(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "LookupProjection")
	defer span.End()

	horizon, err := pathHorizon(r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	record, found, err := h.projectionService.LookupProjection(ctx, horizon, name)
	if err != nil {
		h.logger.WarnContext(ctx, "projection lookup failed", "horizon", horizon, "name", name, "error", err)
		h.fail(ctx, w, err)
		return
	}
	if !found {
		h.fail(ctx, w, fmt.Errorf("%w: no %s projection for %q", usecase.ErrNotFound, horizon, name))
		return
	}

	matched, _ := projection.RecordName(record)
	writeSuccess(w, http.StatusOK, projectionLookupDTO{
		Horizon: string(horizon),
		Query:   name,
		Name:    matched,
		Summary: projection.Summarize(record),
		Record:  record,
	})
}

func (h *Handler) TopProjections(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "TopProjections")
	defer span.End()

	horizon, err := pathHorizon(r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.fail(ctx, w, fmt.Errorf("%w: limit must be positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = v
	}

	stat := strings.TrimSpace(query.Get("stat"))
	if stat == "" {
		stat = "HR"
	}
	input := usecase.TopFreeAgentsInput{
		UploadID: strings.TrimSpace(query.Get("upload_id")),
		Horizon:  string(horizon),
		Position: strings.TrimSpace(query.Get("position")),
		Stat:     stat,
		Limit:    limit,
	}
	items, err := h.rosterService.TopFreeAgents(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "top projections failed", "horizon", horizon, "stat", stat, "upload_id", input.UploadID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, projectionTopDTO{
		Horizon:  string(horizon),
		Position: input.Position,
		Stat:     stat,
		UploadID: input.UploadID,
		Items:    items,
	})
}

func (h *Handler) EnrichPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "EnrichPlayers")
	defer span.End()

	horizon, err := pathHorizon(r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	var req enrichPlayersRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.fail(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.fail(ctx, w, err)
		return
	}

	items, err := h.projectionService.EnrichPlayers(ctx, horizon, req.Names)
	if err != nil {
		h.logger.WarnContext(ctx, "enrich players failed", "horizon", horizon, "players", len(req.Names), "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, enrichedPlayersToDTO(items))
}

func (h *Handler) RefreshProjections(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RefreshProjections")
	defer span.End()

	horizon, err := pathHorizon(r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	table, err := h.projectionService.RefreshProjections(ctx, horizon)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh projections failed", "horizon", horizon, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, projectionRefreshDTO{
		Horizon:   string(table.Horizon),
		Rows:      table.Len(),
		Columns:   table.Columns,
		FetchedAt: table.FetchedAt,
	})
}
