package users

import (
	"context"

	"github.com/dmitrijs2005/daleavatar/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
