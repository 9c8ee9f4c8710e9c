package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// NewProfile carries the columns a client may set when creating a profile.
// The id is always generated by the directory.
type NewProfile struct {
	Username string
}

type ProfileRepository interface {
	// GetByUsername fails with a NOT_FOUND domain error when no row matches.
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	// Insert fails with CONFLICT when the username is already taken and with
	// SCHEMA when the table does not match the expected shape.
	Insert(ctx context.Context, profile NewProfile) (*domain.Profile, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.ProfileRef, error)
	List(ctx context.Context) ([]domain.Profile, error)
	UpdatePushToken(ctx context.Context, id int64, token *string) error
}
