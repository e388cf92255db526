// Package rest exposes the backend over HTTP: account, streaming-session
// and recording routes behind a chi router.
package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/logging"
	"github.com/dmitrijs2005/daleavatar/internal/server/auth"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/server/services"
	"github.com/dmitrijs2005/daleavatar/internal/server/streaming"
)

type UserService interface {
	Register(ctx context.Context, email string, name *string, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error
	ChangePassword(ctx context.Context, userID int64, current, next string) error
}

type RecordingService interface {
	Init(ctx context.Context, userID int64) (*models.Recording, error)
	List(ctx context.Context, userID int64) ([]models.Recording, error)
	Get(ctx context.Context, userID, id int64) (*models.Recording, error)
	Upload(ctx context.Context, userID, id int64, payload string) (string, error)
	DownloadURL(ctx context.Context, userID, id int64) (string, error)
	Export(ctx context.Context, userID, id int64) (*models.Export, error)
}

type StreamingClient interface {
	CreateSessionToken(ctx context.Context) (string, error)
	NewSession(ctx context.Context, token string, req streaming.StartRequest) (*streaming.Session, error)
	StartSession(ctx context.Context, token, sessionID string) (json.RawMessage, error)
	KeepAlive(ctx context.Context, token string) (json.RawMessage, error)
	Speak(ctx context.Context, token, text, taskType string) (json.RawMessage, error)
}

type Handler struct {
	users      UserService
	recordings RecordingService
	streaming  StreamingClient
	logger     logging.Logger
}

func NewHandler(users UserService, recordings RecordingService, streaming StreamingClient, logger logging.Logger) *Handler {
	return &Handler{
		users:      users,
		recordings: recordings,
		streaming:  streaming,
		logger:     logger,
	}
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &healthResponse{OK: true, Service: common.ServiceName})
}

// userID returns the caller's ID. Routes using it sit behind RequireAuth,
// so missing claims mean a wiring bug.
func userID(r *http.Request) (int64, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// internalError logs err and answers 500 with code.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	h.logger.Error(r.Context(), "request failed", "code", code, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, code, err.Error())
}
