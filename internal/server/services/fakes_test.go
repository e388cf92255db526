package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/dbx"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/recordings"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	nextID  int64

	existsErr  error
	createErr  error
	getErr     error
	updateErr  error
	hashErr    error
	hashWrites int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.nextID++
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			if upd.Name != nil {
				u.Name = upd.Name
			}
			if len(upd.ProfileSettings) > 0 {
				u.ProfileSettings = upd.ProfileSettings
			}
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if f.hashErr != nil {
		return f.hashErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			f.hashWrites++
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRecordingsRepo struct {
	rows    map[int64]*models.Recording
	exports []*models.Export
	nextID  int64

	listLimit int
	createErr error
	exportErr error
}

func newFakeRecordingsRepo() *fakeRecordingsRepo {
	return &fakeRecordingsRepo{rows: map[int64]*models.Recording{}, nextID: 1}
}

func (f *fakeRecordingsRepo) Create(ctx context.Context, userID int64, sessionID *string) (*models.Recording, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec := &models.Recording{ID: f.nextID, UserID: userID, SessionID: sessionID, Status: models.RecordingPending, CreatedAt: time.Now()}
	f.rows[rec.ID] = rec
	f.nextID++
	return rec, nil
}

func (f *fakeRecordingsRepo) List(ctx context.Context, userID int64, limit int) ([]models.Recording, error) {
	f.listLimit = limit
	out := make([]models.Recording, 0)
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRecordingsRepo) Get(ctx context.Context, userID, id int64) (*models.Recording, error) {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordingsRepo) MarkUploaded(ctx context.Context, userID, id int64, key string, size int64) error {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return common.ErrorNotFound
	}
	r.Status = models.RecordingReady
	r.StorageKey = &key
	r.SizeBytes = &size
	return nil
}

func (f *fakeRecordingsRepo) CreateExport(ctx context.Context, e *models.Export) (*models.Export, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	e.ID = int64(len(f.exports) + 1)
	f.exports = append(f.exports, e)
	return e, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRecordingsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Recordings(db dbx.DBTX) recordings.Repository { return m.r }

type fakeStore struct {
	puts    map[string][]byte
	ctype   string
	putErr  error
	signErr error
}

func (s *fakeStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[key] = body
	s.ctype = contentType
	return nil
}

func (s *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://signed.example/" + key, nil
}
