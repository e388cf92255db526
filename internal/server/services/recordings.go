package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/logging"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/repomanager"
)

const (
	recordingListLimit   = 100
	recordingContentType = "video/webm"
	exportTarget         = "third_party_stub"
	exportStatusQueued   = "queued"
)

type RecordingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	logger      logging.Logger
}

func NewRecordingService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *RecordingService {
	return &RecordingService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger,
	}
}

// StorageKey is where the composite video of recording id is stored.
func StorageKey(id int64) string {
	return fmt.Sprintf("recordings/%d/composite.webm", id)
}

func (s *RecordingService) Init(ctx context.Context, userID int64) (*models.Recording, error) {
	rec, err := s.repomanager.Recordings(s.db).Create(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating recording: %w", err)
	}
	return rec, nil
}

func (s *RecordingService) List(ctx context.Context, userID int64) ([]models.Recording, error) {
	list, err := s.repomanager.Recordings(s.db).List(ctx, userID, recordingListLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing recordings: %w", err)
	}
	return list, nil
}

func (s *RecordingService) Get(ctx context.Context, userID, id int64) (*models.Recording, error) {
	rec, err := s.repomanager.Recordings(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error loading recording: %w", err)
	}
	return rec, nil
}

// Upload stores a base64 video (optionally a data: URL) for the recording
// and marks it ready. It returns the storage key.
func (s *RecordingService) Upload(ctx context.Context, userID, id int64, payload string) (string, error) {
	body, err := decodeVideo(payload)
	if err != nil {
		return "", err
	}

	repo := s.repomanager.Recordings(s.db)
	if _, err := repo.Get(ctx, userID, id); err != nil {
		return "", fmt.Errorf("error loading recording: %w", err)
	}

	key := StorageKey(id)
	if err := s.store.Put(ctx, key, body, recordingContentType); err != nil {
		return "", fmt.Errorf("error storing recording: %w", err)
	}

	if err := repo.MarkUploaded(ctx, userID, id, key, int64(len(body))); err != nil {
		return "", fmt.Errorf("error updating recording: %w", err)
	}

	s.logger.Info(ctx, "recording uploaded", "recording_id", id, "size_bytes", len(body))
	return key, nil
}

// DownloadURL signs a short-lived GET URL for a ready recording.
func (s *RecordingService) DownloadURL(ctx context.Context, userID, id int64) (string, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if rec.Status != models.RecordingReady || rec.StorageKey == nil {
		return "", common.ErrRecordingNotReady
	}

	url, err := s.store.PresignGet(ctx, *rec.StorageKey, PresignTTL)
	if err != nil {
		return "", fmt.Errorf("error signing url: %w", err)
	}
	return url, nil
}

// Export queues a hand-off of the recording to the external target.
func (s *RecordingService) Export(ctx context.Context, userID, id int64) (*models.Export, error) {
	repo := s.repomanager.Recordings(s.db)
	if _, err := repo.Get(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("error loading recording: %w", err)
	}

	export, err := repo.CreateExport(ctx, &models.Export{
		RecordingID: id,
		Target:      exportTarget,
		Status:      exportStatusQueued,
		Reference:   uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating export: %w", err)
	}
	return export, nil
}

// decodeVideo accepts "data:video/webm;base64,<b64>" or bare base64.
func decodeVideo(payload string) ([]byte, error) {
	if _, b64, ok := strings.Cut(payload, "base64,"); ok {
		payload = b64
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, common.ErrorValidation
	}

	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", common.ErrorValidation)
	}
	return body, nil
}
