package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const lapColumns = `l.id, l.unit, l.pelapor, l.modul_simrs, l.jenis_kesalahan, l.deskripsi,
	l.tgl_kejadian, l.bukti_file, l.status, l.created_at, l.updated_at,
	l.created_by, l.assigned_to, cu.username AS creator_name, au.username AS assignee_name`

const lapFrom = ` FROM laporan l
	LEFT JOIN app_user cu ON cu.id = l.created_by
	LEFT JOIN app_user au ON au.id = l.assigned_to`

// dateLayout is the wire format for date_from/date_to.
const dateLayout = "2006-01-02"

// sortColumns whitelists the report fields a client may sort by.
var sortColumns = map[string]string{
	"id":              "id",
	"unit":            "unit",
	"pelapor":         "pelapor",
	"modul_simrs":     "modul_simrs",
	"jenis_kesalahan": "jenis_kesalahan",
	"tgl_kejadian":    "tgl_kejadian",
	"status":          "status",
	"created_at":      "created_at",
	"updated_at":      "updated_at",
}

// buildFilter compiles the supplied search parameters into a WHERE clause and
// its arguments. All filters combine conjunctively; the free-text search is a
// disjunction over unit, pelapor, modul_simrs and deskripsi. Malformed dates
// are logged and skipped, leaving the other filters applied.
func buildFilter(p SearchParams) (string, []any) {
	var (
		where string
		args  []any
	)
	and := func(clause string, vals ...any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, vals...)
	}

	if p.SearchQuery != "" {
		term := "%" + p.SearchQuery + "%"
		n := len(args) + 1
		and(fmt.Sprintf(
			"(l.unit ILIKE $%d OR l.pelapor ILIKE $%d OR l.modul_simrs ILIKE $%d OR l.deskripsi ILIKE $%d)",
			n, n, n, n), term)
	}
	if p.UnitFilter != "" {
		and(fmt.Sprintf("l.unit = $%d", len(args)+1), p.UnitFilter)
	}
	if p.StatusFilter != "" {
		and(fmt.Sprintf("l.status = $%d", len(args)+1), p.StatusFilter)
	}
	if p.JenisFilter != "" {
		and(fmt.Sprintf("l.jenis_kesalahan = $%d", len(args)+1), p.JenisFilter)
	}
	if p.PelaporFilter != "" {
		and(fmt.Sprintf("l.pelapor ILIKE $%d", len(args)+1), "%"+p.PelaporFilter+"%")
	}
	if p.DateFrom != "" {
		if from, err := time.Parse(dateLayout, p.DateFrom); err == nil {
			and(fmt.Sprintf("l.tgl_kejadian >= $%d", len(args)+1), from)
		} else {
			log.Debug().Str("date_from", p.DateFrom).Err(err).Msg("skipping malformed date filter")
		}
	}
	if p.DateTo != "" {
		// Add one day so the whole end date is included
		if to, err := time.Parse(dateLayout, p.DateTo); err == nil {
			and(fmt.Sprintf("l.tgl_kejadian < $%d", len(args)+1), to.AddDate(0, 0, 1))
		} else {
			log.Debug().Str("date_to", p.DateTo).Err(err).Msg("skipping malformed date filter")
		}
	}

	return where, args
}

// buildOrderBy compiles the sort parameters into an ORDER BY clause. Unknown
// sort fields fall back to id ascending, which is also the canonical ordering
// when no parameters are supplied: pagination stays deterministic across
// requests. Any sort_order other than "desc" sorts ascending. Non-id sorts
// get an id tiebreak so equal keys page stably.
func buildOrderBy(p SearchParams) string {
	col, ok := sortColumns[p.SortBy]
	if !ok {
		if p.SortBy != "" {
			log.Debug().Str("sort_by", p.SortBy).Msg("unknown sort field, using default order")
		}
		return " ORDER BY l.id ASC"
	}

	dir := "ASC"
	if p.SortOrder == "desc" {
		dir = "DESC"
	}
	if col == "id" {
		return fmt.Sprintf(" ORDER BY l.id %s", dir)
	}
	return fmt.Sprintf(" ORDER BY l.%s %s, l.id ASC", col, dir)
}

// andCond appends one more condition to an already-compiled filter. cond must
// contain a single %d verb for the placeholder number.
func andCond(where string, args []any, cond string, val any) (string, []any) {
	out := make([]any, 0, len(args)+1)
	out = append(out, args...)
	out = append(out, val)
	cond = fmt.Sprintf(cond, len(out))
	if where == "" {
		return " WHERE " + cond, out
	}
	return where + " AND " + cond, out
}

func (r *repoPG) Create(ctx context.Context, lap *Laporan) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO laporan (
			unit, pelapor, modul_simrs, jenis_kesalahan, deskripsi,
			tgl_kejadian, bukti_file, status, created_by, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		lap.Unit, lap.Pelapor, lap.ModulSIMRS, lap.JenisKesalahan, lap.Deskripsi,
		lap.TglKejadian, lap.BuktiFile, lap.Status, lap.CreatedBy, lap.AssignedTo,
	).Scan(&lap.ID, &lap.CreatedAt, &lap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert laporan: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Laporan, error) {
	return scanLaporan(r.pool.QueryRow(ctx,
		`SELECT `+lapColumns+lapFrom+` WHERE l.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, lap *Laporan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE laporan SET
			unit = $2, pelapor = $3, modul_simrs = $4, jenis_kesalahan = $5,
			deskripsi = $6, tgl_kejadian = $7, bukti_file = $8, status = $9,
			assigned_to = $10, updated_at = NOW()
		WHERE id = $1`,
		lap.ID, lap.Unit, lap.Pelapor, lap.ModulSIMRS, lap.JenisKesalahan,
		lap.Deskripsi, lap.TglKejadian, lap.BuktiFile, lap.Status, lap.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("update laporan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM laporan WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete laporan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Laporan, error) {
	where, args := buildFilter(params)
	query := `SELECT ` + lapColumns + lapFrom + where + buildOrderBy(params)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.queryLaporan(ctx, query, args)
}

func (r *repoPG) SearchAll(ctx context.Context, params SearchParams) ([]*Laporan, error) {
	where, args := buildFilter(params)
	return r.queryLaporan(ctx, `SELECT `+lapColumns+lapFrom+where+buildOrderBy(params), args)
}

// Stats re-counts the filtered set once in total and once per status and
// category value. The per-value counts are independent queries on purpose:
// they mirror what the dashboard actually shows for the current filter.
func (r *repoPG) Stats(ctx context.Context, params SearchParams) (*SearchStats, error) {
	where, args := buildFilter(params)

	stats := &SearchStats{
		ByStatus: make(map[string]int, len(Statuses)),
		ByJenis:  make(map[string]int, len(JenisValues)),
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM laporan l`+where, args...,
	).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count laporan: %w", err)
	}

	for _, status := range Statuses {
		w, a := andCond(where, args, "l.status = $%d", status)
		var n int
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM laporan l`+w, a...).Scan(&n); err != nil {
			return nil, fmt.Errorf("count laporan by status %s: %w", status, err)
		}
		stats.ByStatus[status] = n
	}

	for _, jenis := range JenisValues {
		w, a := andCond(where, args, "l.jenis_kesalahan = $%d", jenis)
		var n int
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM laporan l`+w, a...).Scan(&n); err != nil {
			return nil, fmt.Errorf("count laporan by jenis %s: %w", jenis, err)
		}
		stats.ByJenis[jenis] = n
	}

	return stats, nil
}

func (r *repoPG) DistinctUnits(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT unit FROM laporan WHERE unit IS NOT NULL ORDER BY unit`)
	if err != nil {
		return nil, fmt.Errorf("query distinct units: %w", err)
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repoPG) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	stats := &GlobalStats{ByJenis: make(map[string]int, len(JenisValues))}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM laporan`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count laporan: %w", err)
	}

	counts := map[string]*int{
		StatusPending:    &stats.Pending,
		StatusInProgress: &stats.InProgress,
		StatusResolved:   &stats.Resolved,
	}
	for _, status := range Statuses {
		if err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM laporan WHERE status = $1`, status,
		).Scan(counts[status]); err != nil {
			return nil, fmt.Errorf("count laporan by status %s: %w", status, err)
		}
	}

	// Zero counts for categories nothing was filed under
	for _, jenis := range JenisValues {
		stats.ByJenis[jenis] = 0
	}
	rows, err := r.pool.Query(ctx,
		`SELECT jenis_kesalahan, COUNT(*) FROM laporan GROUP BY jenis_kesalahan`)
	if err != nil {
		return nil, fmt.Errorf("count laporan by jenis: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var jenis string
		var n int
		if err := rows.Scan(&jenis, &n); err != nil {
			return nil, err
		}
		stats.ByJenis[jenis] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := r.queryLaporan(ctx,
		`SELECT `+lapColumns+lapFrom+` ORDER BY l.id ASC LIMIT 10`, nil)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent

	return stats, nil
}

func (r *repoPG) queryLaporan(ctx context.Context, query string, args []any) ([]*Laporan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query laporan: %w", err)
	}
	defer rows.Close()

	var result []*Laporan
	for rows.Next() {
		lap, err := scanLaporanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lap)
	}
	return result, rows.Err()
}

func scanLaporan(row pgx.Row) (*Laporan, error) {
	var l Laporan
	err := row.Scan(
		&l.ID, &l.Unit, &l.Pelapor, &l.ModulSIMRS, &l.JenisKesalahan, &l.Deskripsi,
		&l.TglKejadian, &l.BuktiFile, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&l.CreatedBy, &l.AssignedTo, &l.CreatorName, &l.AssigneeName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanLaporanRow(rows pgx.Rows) (*Laporan, error) {
	var l Laporan
	err := rows.Scan(
		&l.ID, &l.Unit, &l.Pelapor, &l.ModulSIMRS, &l.JenisKesalahan, &l.Deskripsi,
		&l.TglKejadian, &l.BuktiFile, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&l.CreatedBy, &l.AssignedTo, &l.CreatorName, &l.AssigneeName,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
