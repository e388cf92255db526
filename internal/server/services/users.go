package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daleavatar/internal/common"
	"github.com/dmitrijs2005/daleavatar/internal/dbx"
	"github.com/dmitrijs2005/daleavatar/internal/logging"
	"github.com/dmitrijs2005/daleavatar/internal/server/auth"
	"github.com/dmitrijs2005/daleavatar/internal/server/models"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/repomanager"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User
	Token string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates an account and signs a token for it. The existence check
// and the insert share one transaction; the unique index still backs it up.
func (s *UserService) Register(ctx context.Context, email string, name *string, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, Name: name, PasswordHash: hash}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorAlreadyExists
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks credentials and signs a token. Unknown users, accounts
// without a stored digest and wrong passwords all yield ErrorUnauthorized.
// A digest in an outdated format is replaced after a successful check.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.repomanager.Users(s.db).UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	if upd.Empty() {
		return common.ErrorNoUpdates
	}
	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd); err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

// ChangePassword replaces the digest once the current password checks out.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return common.ErrorUnauthorized
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}
