package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/simrs/bap/internal/domain/report"
	"github.com/simrs/bap/internal/platform/auth"
)

// ErrInvalid marks a rejected submission. Messages wrapping it are safe to
// return to the client; anything else coming out of the service is a storage
// failure and must stay server-side.
var ErrInvalid = errors.New("invalid input")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create saves the current filter parameters under a name. Names are unique
// per user; malformed date strings are dropped from the snapshot the same
// way the dashboard drops them from queries.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, name string, params report.SearchParams) (*SearchPreference, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: authentication required", ErrInvalid)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	pref := &SearchPreference{
		UserID:        actor.ID,
		Name:          name,
		SearchQuery:   optional(params.SearchQuery),
		UnitFilter:    optional(params.UnitFilter),
		StatusFilter:  optional(params.StatusFilter),
		JenisFilter:   optional(params.JenisFilter),
		PelaporFilter: optional(params.PelaporFilter),
		SortBy:        optional(params.SortBy),
		SortOrder:     optional(params.SortOrder),
	}
	pref.DateFrom = parseDate("date_from", params.DateFrom)
	pref.DateTo = parseDate("date_to", params.DateTo)

	if err := s.repo.Create(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// Get returns the actor's preference. Another user's preference is
// indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*SearchPreference, error) {
	pref, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || pref.UserID != actor.ID {
		return nil, ErrNotFound
	}
	return pref, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Actor) ([]*SearchPreference, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: authentication required", ErrInvalid)
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Load resolves a saved preference back into dashboard search parameters.
func (s *Service) Load(ctx context.Context, actor *auth.Actor, id int64) (report.SearchParams, error) {
	pref, err := s.Get(ctx, actor, id)
	if err != nil {
		return report.SearchParams{}, err
	}
	return pref.Params(), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(field, s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		log.Debug().Str(field, s).Err(err).Msg("dropping malformed date from saved search")
		return nil
	}
	return &t
}
