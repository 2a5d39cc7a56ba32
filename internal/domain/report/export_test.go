package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func exportFixtures() []*Laporan {
	modul := "Billing"
	creator := "ana"
	return []*Laporan{
		{
			ID:             1,
			Unit:           "IGD",
			Pelapor:        "Ana",
			ModulSIMRS:     &modul,
			JenisKesalahan: "Sistem Error",
			Deskripsi:      "Aplikasi error saat input tindakan",
			TglKejadian:    time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
			Status:         StatusPending,
			CreatedAt:      time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			CreatorName:    &creator,
		},
		{
			ID:             2,
			Unit:           "Farmasi",
			Pelapor:        "Budi",
			JenisKesalahan: "Data Pasien",
			Deskripsi:      "Nama pasien tertukar",
			TglKejadian:    time.Date(2025, 3, 11, 14, 5, 0, 0, time.UTC),
			Status:         StatusResolved,
			CreatedAt:      time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC),
		},
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 45, 0, time.UTC)

	if got := ExportFileName(FormatCSV, now); got != "laporan_simrs_20250310_093045.csv" {
		t.Errorf("csv name = %s", got)
	}
	if got := ExportFileName(FormatExcel, now); got != "laporan_simrs_20250310_093045.xlsx" {
		t.Errorf("xlsx name = %s", got)
	}
}

func TestExportCSV(t *testing.T) {
	data, err := ExportCSV(exportFixtures())
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != 11 {
		t.Errorf("header has %d columns, want 11", len(rows[0]))
	}
	if rows[0][0] != "ID" || rows[0][10] != "Ditugaskan Ke" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "1" || first[1] != "IGD" || first[3] != "Billing" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[6] != "2025-03-10 09:30" {
		t.Errorf("tgl_kejadian formatted as %q", first[6])
	}
	if first[9] != "ana" {
		t.Errorf("creator column = %q", first[9])
	}

	// Optional fields render as empty strings, never "<nil>"
	second := rows[2]
	if second[3] != "" || second[9] != "" || second[10] != "" {
		t.Errorf("optional columns not empty: %v", second)
	}
}

func TestExportCSVEmpty(t *testing.T) {
	data, err := ExportCSV(nil)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
	if len(rows[0]) != 11 {
		t.Errorf("header has %d columns, want 11", len(rows[0]))
	}
}

func TestExportXLSX(t *testing.T) {
	data, err := ExportXLSX(exportFixtures())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != exportSheetName {
		t.Fatalf("sheets = %v, want [%s]", f.GetSheetList(), exportSheetName)
	}

	head, err := f.GetCellValue(exportSheetName, "A1")
	if err != nil || head != "ID" {
		t.Errorf("A1 = %q (%v), want ID", head, err)
	}
	unit, _ := f.GetCellValue(exportSheetName, "B2")
	if unit != "IGD" {
		t.Errorf("B2 = %q, want IGD", unit)
	}
	tgl, _ := f.GetCellValue(exportSheetName, "G3")
	if !strings.HasPrefix(tgl, "2025-03-11") {
		t.Errorf("G3 = %q, want a 2025-03-11 timestamp", tgl)
	}
}
