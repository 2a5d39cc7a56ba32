package report

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildFilterEmpty(t *testing.T) {
	where, args := buildFilter(SearchParams{})
	if where != "" {
		t.Errorf("expected empty where clause, got %q", where)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildFilterSearchQuery(t *testing.T) {
	where, args := buildFilter(SearchParams{SearchQuery: "igd"})

	want := " WHERE (l.unit ILIKE $1 OR l.pelapor ILIKE $1 OR l.modul_simrs ILIKE $1 OR l.deskripsi ILIKE $1)"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{"%igd%"}) {
		t.Errorf("args = %v, want [%%igd%%]", args)
	}
}

func TestBuildFilterConjunctive(t *testing.T) {
	where, args := buildFilter(SearchParams{
		SearchQuery:   "error",
		UnitFilter:    "IGD",
		StatusFilter:  StatusPending,
		JenisFilter:   "Sistem Error",
		PelaporFilter: "budi",
	})

	want := " WHERE (l.unit ILIKE $1 OR l.pelapor ILIKE $1 OR l.modul_simrs ILIKE $1 OR l.deskripsi ILIKE $1)" +
		" AND l.unit = $2 AND l.status = $3 AND l.jenis_kesalahan = $4 AND l.pelapor ILIKE $5"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	wantArgs := []any{"%error%", "IGD", StatusPending, "Sistem Error", "%budi%"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildFilterDateRange(t *testing.T) {
	where, args := buildFilter(SearchParams{DateFrom: "2025-01-01", DateTo: "2025-01-31"})

	want := " WHERE l.tgl_kejadian >= $1 AND l.tgl_kejadian < $2"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
	from := args[0].(time.Time)
	to := args[1].(time.Time)
	if got := from.Format("2006-01-02"); got != "2025-01-01" {
		t.Errorf("date_from arg = %s", got)
	}
	// Upper bound is exclusive at the start of the next day
	if got := to.Format("2006-01-02"); got != "2025-02-01" {
		t.Errorf("date_to arg = %s, want 2025-02-01", got)
	}
}

func TestBuildFilterMalformedDatesSkipped(t *testing.T) {
	where, args := buildFilter(SearchParams{
		UnitFilter: "Farmasi",
		DateFrom:   "01/02/2025",
		DateTo:     "not-a-date",
	})

	// The unit filter still applies; both date filters drop out
	want := " WHERE l.unit = $1"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{"Farmasi"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildOrderBy(t *testing.T) {
	cases := []struct {
		name   string
		params SearchParams
		want   string
	}{
		{"default", SearchParams{}, " ORDER BY l.id ASC"},
		{"unknown field", SearchParams{SortBy: "password_hash"}, " ORDER BY l.id ASC"},
		{"id desc", SearchParams{SortBy: "id", SortOrder: "desc"}, " ORDER BY l.id DESC"},
		{"pelapor asc tiebreak", SearchParams{SortBy: "pelapor"}, " ORDER BY l.pelapor ASC, l.id ASC"},
		{"pelapor desc tiebreak", SearchParams{SortBy: "pelapor", SortOrder: "desc"}, " ORDER BY l.pelapor DESC, l.id ASC"},
		{"bad order means asc", SearchParams{SortBy: "unit", SortOrder: "sideways"}, " ORDER BY l.unit ASC, l.id ASC"},
		{"order without field ignored", SearchParams{SortOrder: "desc"}, " ORDER BY l.id ASC"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildOrderBy(tc.params); got != tc.want {
				t.Errorf("buildOrderBy(%+v) = %q, want %q", tc.params, got, tc.want)
			}
		})
	}
}

func TestAndCond(t *testing.T) {
	where, args := buildFilter(SearchParams{UnitFilter: "IGD"})

	w, a := andCond(where, args, "l.status = $%d", StatusPending)
	if want := " WHERE l.unit = $1 AND l.status = $2"; w != want {
		t.Errorf("where = %q, want %q", w, want)
	}
	if !reflect.DeepEqual(a, []any{"IGD", StatusPending}) {
		t.Errorf("args = %v", a)
	}

	// Appending to an empty filter starts its own WHERE
	w, a = andCond("", nil, "l.status = $%d", StatusResolved)
	if want := " WHERE l.status = $1"; w != want {
		t.Errorf("where = %q, want %q", w, want)
	}
	if !reflect.DeepEqual(a, []any{StatusResolved}) {
		t.Errorf("args = %v", a)
	}

	// The original filter's args stay untouched
	if !reflect.DeepEqual(args, []any{"IGD"}) {
		t.Errorf("source args mutated: %v", args)
	}
}
