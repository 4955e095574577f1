package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

const uploadFormField = "file"

func (h *Handler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "UploadRoster")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(ctx, w, fmt.Errorf("%w: file exceeds %d bytes", errUploadTooLarge, h.maxUploadBytes))
			return
		}
		h.fail(ctx, w, fmt.Errorf("%w: invalid multipart payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		h.fail(ctx, w, fmt.Errorf("%w: form field %q is required", usecase.ErrInvalidInput, uploadFormField))
		return
	}
	defer file.Close()

	filename := filepath.Base(strings.TrimSpace(header.Filename))
	req := uploadRosterRequest{
		Filename:  filename,
		Extension: strings.ToLower(filepath.Ext(filename)),
		Size:      header.Size,
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.fail(ctx, w, fmt.Errorf("%w: upload must be a non-empty .csv file", err))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.fail(ctx, w, fmt.Errorf("%w: read uploaded file: %v", usecase.ErrInvalidInput, err))
		return
	}

	summary, err := h.importService.ImportRoster(ctx, usecase.ImportRosterInput{
		Filename: req.Filename,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, player.ErrIdentityConflict) {
			h.logger.ErrorContext(ctx, "roster upload failed", "filename", req.Filename, "error", err)
		} else {
			h.logger.WarnContext(ctx, "roster upload rejected", "filename", req.Filename, "error", err)
		}
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, importSummaryToDTO(summary))
}

func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetUpload")
	defer span.End()

	uploadID := strings.TrimSpace(r.PathValue("uploadID"))
	upload, err := h.rosterService.GetUpload(ctx, uploadID)
	if err != nil {
		h.logger.WarnContext(ctx, "get upload failed", "upload_id", uploadID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, uploadToDTO(upload))
}

func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "DeleteUpload")
	defer span.End()

	uploadID := strings.TrimSpace(r.PathValue("uploadID"))
	if err := h.rosterService.DeleteUpload(ctx, uploadID); err != nil {
		h.logger.WarnContext(ctx, "delete upload failed", "upload_id", uploadID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"id": uploadID, "status": "deleted"})
}

func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListRoster")
	defer span.End()

	uploadID := strings.TrimSpace(r.PathValue("uploadID"))
	view, err := h.rosterService.ListRoster(ctx, usecase.ListRosterInput{
		UploadID: uploadID,
		Owner:    strings.TrimSpace(r.URL.Query().Get("owner")),
		Horizon:  strings.TrimSpace(r.URL.Query().Get("horizon")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list roster failed", "upload_id", uploadID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rosterToDTO(view))
}

func (h *Handler) ListFreeAgents(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListFreeAgents")
	defer span.End()

	uploadID := strings.TrimSpace(r.PathValue("uploadID"))
	view, err := h.rosterService.ListFreeAgents(ctx, uploadID, strings.TrimSpace(r.URL.Query().Get("horizon")))
	if err != nil {
		h.logger.WarnContext(ctx, "list free agents failed", "upload_id", uploadID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rosterToDTO(view))
}
