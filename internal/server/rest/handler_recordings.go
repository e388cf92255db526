package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/server/services"
)

type initResponse struct {
	ID int64 `json:"id"`
}

type uploadRequest struct {
	WebmBase64 string `json:"webmBase64"`
}

type urlResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *Handler) InitRecording(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return
	}

	rec, err := h.recordings.Init(r.Context(), uid)
	if err != nil {
		h.internalError(w, r, "recording_init_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, &initResponse{ID: rec.ID})
}

func (h *Handler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return
	}

	list, err := h.recordings.List(r.Context(), uid)
	if err != nil {
		h.internalError(w, r, "recordings_fetch_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetRecording(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := recordingTarget(w, r)
	if !ok {
		return
	}

	rec, err := h.recordings.Get(r.Context(), uid, id)
	if err != nil {
		h.recordingError(w, r, "recording_fetch_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := recordingTarget(w, r)
	if !ok {
		return
	}

	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.WebmBase64 == "" {
		writeError(w, http.StatusBadRequest, "missing_body", "webmBase64 is required")
		return
	}

	key, err := h.recordings.Upload(r.Context(), uid, id, req.WebmBase64)
	if err != nil {
		h.recordingError(w, r, "upload_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, &okResponse{OK: true, Key: key})
}

func (h *Handler) RecordingURL(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := recordingTarget(w, r)
	if !ok {
		return
	}

	url, err := h.recordings.DownloadURL(r.Context(), uid, id)
	if err != nil {
		h.recordingError(w, r, "url_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, &urlResponse{URL: url, ExpiresIn: int(services.PresignTTL.Seconds())})
}

func (h *Handler) ExportRecording(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := recordingTarget(w, r)
	if !ok {
		return
	}

	if _, err := h.recordings.Export(r.Context(), uid, id); err != nil {
		h.recordingError(w, r, "export_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, &okResponse{OK: true})
}

func recordingTarget(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
		return 0, 0, false
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "recording id must be a positive integer")
		return 0, 0, false
	}
	return uid, id, true
}

func (h *Handler) recordingError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
	case errors.Is(err, common.ErrRecordingNotReady):
		writeError(w, http.StatusConflict, "not_ready", err.Error())
	default:
		h.internalError(w, r, code, err)
	}
}
