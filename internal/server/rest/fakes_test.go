package rest

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/server/services"
	"github.com/dmitrijs2005/daleavatar/internal/server/streaming"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	profileErr  error
	updateErr   error
	changeErr   error

	gotEmail    string
	gotUserID   int64
	gotUpdate   models.ProfileUpdate
	gotPassword [2]string
}

func (f *fakeUsers) Register(ctx context.Context, email string, name *string, password string) (*services.AuthResult, error) {
	f.gotEmail = email
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.AuthResult{User: &models.User{ID: 1, Email: email, Name: name}, Token: "tok"}, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	f.gotEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AuthResult{User: &models.User{ID: 1, Email: email}, Token: "tok"}, nil
}

func (f *fakeUsers) Profile(ctx context.Context, userID int64) (*models.User, error) {
	f.gotUserID = userID
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &models.User{ID: userID, Email: "dale@example.com", ProfileSettings: json.RawMessage(`{"theme":"dark"}`),
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	f.gotUserID = userID
	f.gotUpdate = upd
	if upd.Empty() {
		return common.ErrorNoUpdates
	}
	return f.updateErr
}

func (f *fakeUsers) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	f.gotUserID = userID
	f.gotPassword = [2]string{current, next}
	return f.changeErr
}

type fakeRecordings struct {
	err       error
	gotUserID int64
	gotID     int64
	gotBody   string
}

func (f *fakeRecordings) Init(ctx context.Context, userID int64) (*models.Recording, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Recording{ID: 5, UserID: userID, Status: models.RecordingPending}, nil
}

func (f *fakeRecordings) List(ctx context.Context, userID int64) ([]models.Recording, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	summary := "ok"
	return []models.Recording{{ID: 5, UserID: userID, Status: "ready", SummaryText: &summary}}, nil
}

func (f *fakeRecordings) Get(ctx context.Context, userID, id int64) (*models.Recording, error) {
	f.gotUserID, f.gotID = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Recording{ID: id, UserID: userID, Status: "pending"}, nil
}

func (f *fakeRecordings) Upload(ctx context.Context, userID, id int64, payload string) (string, error) {
	f.gotUserID, f.gotID, f.gotBody = userID, id, payload
	if f.err != nil {
		return "", f.err
	}
	return services.StorageKey(id), nil
}

func (f *fakeRecordings) DownloadURL(ctx context.Context, userID, id int64) (string, error) {
	f.gotUserID, f.gotID = userID, id
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example/x", nil
}

func (f *fakeRecordings) Export(ctx context.Context, userID, id int64) (*models.Export, error) {
	f.gotUserID, f.gotID = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Export{ID: 1, RecordingID: id}, nil
}

type fakeStreaming struct {
	err        error
	session    *streaming.Session
	gotToken   string
	gotRequest streaming.StartRequest
	gotText    string
	gotTask    string
	calls      int
}

func (f *fakeStreaming) CreateSessionToken(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "session-token", nil
}

func (f *fakeStreaming) NewSession(ctx context.Context, token string, req streaming.StartRequest) (*streaming.Session, error) {
	f.calls++
	f.gotToken, f.gotRequest = token, req
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeStreaming) StartSession(ctx context.Context, token, sessionID string) (json.RawMessage, error) {
	f.calls++
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"started":"` + sessionID + `"}`), nil
}

func (f *fakeStreaming) KeepAlive(ctx context.Context, token string) (json.RawMessage, error) {
	f.calls++
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeStreaming) Speak(ctx context.Context, token, text, taskType string) (json.RawMessage, error) {
	f.calls++
	f.gotToken, f.gotText, f.gotTask = token, text, taskType
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"code":100}`), nil
}
