package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export formats accepted by the export endpoint.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// exportTimeLayout renders export timestamps as "YYYY-MM-DD HH:MM".
const exportTimeLayout = "2006-01-02 15:04"

// exportSheetName is the worksheet title in XLSX output.
const exportSheetName = "Laporan SIMRS"

// maxColumnWidth caps auto-sized spreadsheet columns.
const maxColumnWidth = 50

// exportHeader is the fixed column set of both export formats.
var exportHeader = []string{
	"ID", "Unit", "Pelapor", "Modul SIMRS", "Jenis Kesalahan",
	"Deskripsi", "Tanggal Kejadian", "Status", "Tanggal Dibuat",
	"Dibuat Oleh", "Ditugaskan Ke",
}

// ExportFile is a fully rendered export ready to send as an attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportFileName builds the generated attachment name, e.g.
// "laporan_simrs_20240131_093000.csv".
func ExportFileName(format string, now time.Time) string {
	ext := "csv"
	if format == FormatExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("laporan_simrs_%s.%s", now.Format("20060102_150405"), ext)
}

// exportRow renders one report as the eleven export cells. Missing optional
// fields render as empty strings.
func exportRow(lap *Laporan) []string {
	return []string{
		strconv.FormatInt(lap.ID, 10),
		lap.Unit,
		lap.Pelapor,
		strOrEmpty(lap.ModulSIMRS),
		lap.JenisKesalahan,
		lap.Deskripsi,
		lap.TglKejadian.Format(exportTimeLayout),
		lap.Status,
		lap.CreatedAt.Format(exportTimeLayout),
		strOrEmpty(lap.CreatorName),
		strOrEmpty(lap.AssigneeName),
	}
}

// ExportCSV renders reports as CSV: one header row, one row per report.
// An empty input yields the header only.
func ExportCSV(reports []*Laporan) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, lap := range reports {
		if err := w.Write(exportRow(lap)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", lap.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders reports as a standalone workbook with a styled header
// row and auto-sized columns.
func ExportXLSX(reports []*Laporan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	widths := make([]int, len(exportHeader))
	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header cell %s: %w", cell, err)
		}
		widths[col] = len(header)
	}

	for i, lap := range reports {
		for col, value := range exportRow(lap) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
			if len(value) > widths[col] {
				widths[col] = len(value)
			}
		}
	}

	for col := range exportHeader {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		width := widths[col] + 2
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(exportSheetName, name, name, float64(width)); err != nil {
			return nil, fmt.Errorf("size column %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
