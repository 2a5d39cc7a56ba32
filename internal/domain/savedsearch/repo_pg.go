package savedsearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const prefColumns = `id, user_id, name, search_query, unit_filter, status_filter,
	jenis_filter, pelapor_filter, date_from, date_to, sort_by, sort_order, created_at`

func (r *repoPG) Create(ctx context.Context, pref *SearchPreference) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO search_preference (
			user_id, name, search_query, unit_filter, status_filter,
			jenis_filter, pelapor_filter, date_from, date_to, sort_by, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		pref.UserID, pref.Name, pref.SearchQuery, pref.UnitFilter, pref.StatusFilter,
		pref.JenisFilter, pref.PelaporFilter, pref.DateFrom, pref.DateTo,
		pref.SortBy, pref.SortOrder,
	).Scan(&pref.ID, &pref.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert search preference: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*SearchPreference, error) {
	return scanPref(r.pool.QueryRow(ctx,
		`SELECT `+prefColumns+` FROM search_preference WHERE id = $1`, id))
}

func (r *repoPG) ListByUser(ctx context.Context, userID int64) ([]*SearchPreference, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefColumns+` FROM search_preference WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query search preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*SearchPreference
	for rows.Next() {
		var p SearchPreference
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.SearchQuery, &p.UnitFilter, &p.StatusFilter,
			&p.JenisFilter, &p.PelaporFilter, &p.DateFrom, &p.DateTo,
			&p.SortBy, &p.SortOrder, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM search_preference WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete search preference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPref(row pgx.Row) (*SearchPreference, error) {
	var p SearchPreference
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.SearchQuery, &p.UnitFilter, &p.StatusFilter,
		&p.JenisFilter, &p.PelaporFilter, &p.DateFrom, &p.DateTo,
		&p.SortBy, &p.SortOrder, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
