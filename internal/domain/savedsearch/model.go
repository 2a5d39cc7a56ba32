// Package savedsearch persists per-user named dashboard filters.
package savedsearch

import (
	"time"

	"github.com/simrs/bap/internal/domain/report"
)

const dateLayout = "2006-01-02"

// SearchPreference is a named snapshot of dashboard filter and sort
// parameters, owned by the user who saved it.
type SearchPreference struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	Name          string     `db:"name" json:"name"`
	SearchQuery   *string    `db:"search_query" json:"search_query,omitempty"`
	UnitFilter    *string    `db:"unit_filter" json:"unit_filter,omitempty"`
	StatusFilter  *string    `db:"status_filter" json:"status_filter,omitempty"`
	JenisFilter   *string    `db:"jenis_filter" json:"jenis_filter,omitempty"`
	PelaporFilter *string    `db:"pelapor_filter" json:"pelapor_filter,omitempty"`
	DateFrom      *time.Time `db:"date_from" json:"date_from,omitempty"`
	DateTo        *time.Time `db:"date_to" json:"date_to,omitempty"`
	SortBy        *string    `db:"sort_by" json:"sort_by,omitempty"`
	SortOrder     *string    `db:"sort_order" json:"sort_order,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Params converts the stored snapshot back into dashboard search parameters.
func (p *SearchPreference) Params() report.SearchParams {
	out := report.SearchParams{
		SearchQuery:   deref(p.SearchQuery),
		UnitFilter:    deref(p.UnitFilter),
		StatusFilter:  deref(p.StatusFilter),
		JenisFilter:   deref(p.JenisFilter),
		PelaporFilter: deref(p.PelaporFilter),
		SortBy:        deref(p.SortBy),
		SortOrder:     deref(p.SortOrder),
	}
	if p.DateFrom != nil {
		out.DateFrom = p.DateFrom.Format(dateLayout)
	}
	if p.DateTo != nil {
		out.DateTo = p.DateTo.Format(dateLayout)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
