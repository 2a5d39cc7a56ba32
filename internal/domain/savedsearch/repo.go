package savedsearch

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("search preference not found")
	ErrConflict = errors.New("a preference with that name already exists")
)

type Repository interface {
	Create(ctx context.Context, pref *SearchPreference) error
	GetByID(ctx context.Context, id int64) (*SearchPreference, error)
	ListByUser(ctx context.Context, userID int64) ([]*SearchPreference, error)
	Delete(ctx context.Context, id int64) error
}
