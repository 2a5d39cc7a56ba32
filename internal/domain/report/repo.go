package report

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Repository defines the persistence interface for reports. Search, SearchAll
// and Stats evaluate the same compiled filter so that page, export and
// statistics always agree.
type Repository interface {
	Create(ctx context.Context, lap *Laporan) error
	GetByID(ctx context.Context, id int64) (*Laporan, error)
	Update(ctx context.Context, lap *Laporan) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Laporan, error)
	SearchAll(ctx context.Context, params SearchParams) ([]*Laporan, error)
	Stats(ctx context.Context, params SearchParams) (*SearchStats, error)
	DistinctUnits(ctx context.Context) ([]string, error)
	GlobalStats(ctx context.Context) (*GlobalStats, error)
}
