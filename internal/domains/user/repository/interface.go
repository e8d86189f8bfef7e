package repository

import (
	"context"

	"github.com/google/uuid"

	"marketplace-backend/internal/domains/user/model"
)

// UserRepository reads user records for display purposes
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetNamesByIDs batch-resolves display names; unknown IDs are simply absent
	GetNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
