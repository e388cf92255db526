package recordings

import (
	"context"

	"github.com/dmitrijs2005/daleavatar/internal/server/models"
)

// Repository is scoped by owner: every read and write takes the caller's
// user ID and never touches another user's rows.
type Repository interface {
	Create(ctx context.Context, userID int64, sessionID *string) (*models.Recording, error)
	List(ctx context.Context, userID int64, limit int) ([]models.Recording, error)
	Get(ctx context.Context, userID, id int64) (*models.Recording, error)
	MarkUploaded(ctx context.Context, userID, id int64, key string, size int64) error
	CreateExport(ctx context.Context, export *models.Export) (*models.Export, error)
}
