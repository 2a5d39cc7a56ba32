package report

import (
	"time"
)

// Report statuses. The status field is a closed enum with free transitions:
// any authenticated actor may set any of the three values regardless of the
// current one.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Statuses lists the valid status values in display order.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved}

// JenisValues lists the valid error categories (jenis kesalahan).
var JenisValues = []string{"Data Pasien", "Transaksi", "Sistem Error", "Lainnya"}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidJenis(j string) bool {
	for _, v := range JenisValues {
		if v == j {
			return true
		}
	}
	return false
}

// Laporan maps to the laporan table: one incident report submitted against a
// SIMRS module. CreatorName and AssigneeName are joined from app_user for
// display and export.
type Laporan struct {
	ID             int64      `db:"id" json:"id"`
	Unit           string     `db:"unit" json:"unit"`
	Pelapor        string     `db:"pelapor" json:"pelapor"`
	ModulSIMRS     *string    `db:"modul_simrs" json:"modul_simrs,omitempty"`
	JenisKesalahan string     `db:"jenis_kesalahan" json:"jenis_kesalahan"`
	Deskripsi      string     `db:"deskripsi" json:"deskripsi"`
	TglKejadian    time.Time  `db:"tgl_kejadian" json:"tgl_kejadian"`
	BuktiFile      *string    `db:"bukti_file" json:"bukti_file,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy      *int64     `db:"created_by" json:"created_by,omitempty"`
	AssignedTo     *int64     `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatorName    *string    `db:"creator_name" json:"creator_name,omitempty"`
	AssigneeName   *string    `db:"assignee_name" json:"assignee_name,omitempty"`
}

// SearchParams carries the optional dashboard filter and sort parameters.
// Date values stay raw YYYY-MM-DD strings: a malformed date is skipped at
// query-build time, never surfaced to the caller.
type SearchParams struct {
	SearchQuery   string `json:"search_query,omitempty" query:"search_query"`
	UnitFilter    string `json:"unit_filter,omitempty" query:"unit_filter"`
	StatusFilter  string `json:"status_filter,omitempty" query:"status_filter"`
	JenisFilter   string `json:"jenis_filter,omitempty" query:"jenis_filter"`
	PelaporFilter string `json:"pelapor_filter,omitempty" query:"pelapor_filter"`
	DateFrom      string `json:"date_from,omitempty" query:"date_from"`
	DateTo        string `json:"date_to,omitempty" query:"date_to"`
	SortBy        string `json:"sort_by,omitempty" query:"sort_by"`
	SortOrder     string `json:"sort_order,omitempty" query:"sort_order"`
}

// SearchStats summarizes the full filtered result set (not just the current
// page): total matches plus per-status and per-category breakdowns. Every
// known enum value is present, zero counts included.
type SearchStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"status_stats"`
	ByJenis  map[string]int `json:"jenis_stats"`
}

// GlobalStats backs the statistics page: whole-table counts and the ten
// reports with the lowest ids.
type GlobalStats struct {
	Total      int            `json:"total_laporan"`
	Pending    int            `json:"pending_count"`
	InProgress int            `json:"in_progress_count"`
	Resolved   int            `json:"resolved_count"`
	ByJenis    map[string]int `json:"jenis_stats"`
	Recent     []*Laporan     `json:"recent_reports"`
}
