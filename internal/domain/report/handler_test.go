package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simrs/bap/internal/platform/auth"
	"github.com/simrs/bap/internal/platform/filestore"
)

type fakeOpener struct {
	files map[string]string
}

func (f fakeOpener) Open(name string) (io.ReadCloser, error) {
	content, ok := f.files[name]
	if !ok {
		return nil, filestore.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func actorMiddleware(a *auth.Actor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithActor(c.Request().Context(), a)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func setupAPI(t *testing.T, actor *auth.Actor) (*echo.Echo, *Service, fakeOpener) {
	t.Helper()
	svc, _, _ := newTestService()
	opener := fakeOpener{files: map[string]string{}}

	e := echo.New()
	api := e.Group("/api/v1", actorMiddleware(actor))
	NewHandler(svc, opener).RegisterRoutes(api)
	return e, svc, opener
}

func doReq(e *echo.Echo, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlerDashboard(t *testing.T) {
	e, svc, _ := setupAPI(t, userActor)
	seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	seed(t, svc, "Farmasi", "Budi", "Data Pasien", time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodGet, "/api/v1/laporan?unit_filter=IGD", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Laporan struct {
			Data  []*Laporan `json:"data"`
			Total int        `json:"total"`
		} `json:"laporan"`
		Stats SearchStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Laporan.Total != 1 || len(resp.Laporan.Data) != 1 {
		t.Errorf("filtered total = %d, rows = %d", resp.Laporan.Total, len(resp.Laporan.Data))
	}
	if resp.Laporan.Data[0].Unit != "IGD" {
		t.Errorf("unit = %s", resp.Laporan.Data[0].Unit)
	}
	if resp.Stats.Total != 1 {
		t.Errorf("stats total = %d", resp.Stats.Total)
	}
}

func TestHandlerDashboardEmpty(t *testing.T) {
	e, _, _ := setupAPI(t, userActor)

	rec := doReq(e, http.MethodGet, "/api/v1/laporan", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"data":null`) {
		t.Errorf("empty result should be an empty array: %s", rec.Body)
	}
}

func multipartReport(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("bukti_file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(fileContent)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHandlerCreate(t *testing.T) {
	e, _, _ := setupAPI(t, userActor)

	body, ct := multipartReport(t, map[string]string{
		"unit":            "IGD",
		"pelapor":         "Ana",
		"modul_simrs":     "Billing",
		"jenis_kesalahan": "Sistem Error",
		"deskripsi":       "error saat simpan",
		"tgl_kejadian":    "2025-03-01T08:30",
	}, "bukti.png", "png-bytes")

	rec := doReq(e, http.MethodPost, "/api/v1/laporan", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var lap Laporan
	if err := json.Unmarshal(rec.Body.Bytes(), &lap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lap.ID == 0 || lap.Status != StatusPending {
		t.Errorf("created laporan = %+v", lap)
	}
	if lap.BuktiFile == nil {
		t.Error("bukti_file not recorded")
	}
}

func TestHandlerCreateBadDate(t *testing.T) {
	e, _, _ := setupAPI(t, userActor)

	body, ct := multipartReport(t, map[string]string{
		"unit":            "IGD",
		"pelapor":         "Ana",
		"jenis_kesalahan": "Lainnya",
		"deskripsi":       "x",
		"tgl_kejadian":    "01-03-2025",
	}, "", "")

	rec := doReq(e, http.MethodPost, "/api/v1/laporan", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	e, _, _ := setupAPI(t, userActor)

	rec := doReq(e, http.MethodGet, "/api/v1/laporan/999", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = doReq(e, http.MethodGet, "/api/v1/laporan/abc", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	e, svc, _ := setupAPI(t, adminActor)
	lap := seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodPut, "/api/v1/laporan/1/status",
		strings.NewReader(`{"status":"in_progress","assigned_to":7}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	got, err := svc.Get(context.Background(), lap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusInProgress || got.AssignedTo == nil || *got.AssignedTo != 7 {
		t.Errorf("laporan = %+v", got)
	}

	// assigned_to 0 clears the assignment
	rec = doReq(e, http.MethodPut, "/api/v1/laporan/1/status",
		strings.NewReader(`{"status":"resolved","assigned_to":0}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got, _ = svc.Get(context.Background(), lap.ID)
	if got.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil", got.AssignedTo)
	}

	rec = doReq(e, http.MethodPut, "/api/v1/laporan/1/status",
		strings.NewReader(`{"status":"done"}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerStorageFailuresStayGeneric(t *testing.T) {
	svc, repo, _ := newTestService()
	e := echo.New()
	api := e.Group("/api/v1", actorMiddleware(adminActor))
	NewHandler(svc, fakeOpener{}).RegisterRoutes(api)

	lap := seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	repo.createErr = errors.New("insert laporan: connection refused")
	repo.updateErr = errors.New("update laporan: connection refused")

	body, ct := multipartReport(t, map[string]string{
		"unit":            "IGD",
		"pelapor":         "Budi",
		"jenis_kesalahan": "Lainnya",
		"deskripsi":       "x",
		"tgl_kejadian":    "2025-03-01T08:30",
	}, "", "")
	rec := doReq(e, http.MethodPost, "/api/v1/laporan", body, ct)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("create status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("create leaked storage detail: %s", rec.Body)
	}

	rec = doReq(e, http.MethodPut, fmt.Sprintf("/api/v1/laporan/%d/status", lap.ID),
		strings.NewReader(`{"status":"resolved"}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("update status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("update leaked storage detail: %s", rec.Body)
	}
}

func TestHandlerDelete(t *testing.T) {
	e, svc, _ := setupAPI(t, adminActor)
	seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodDelete, "/api/v1/laporan/1", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	rec = doReq(e, http.MethodDelete, "/api/v1/laporan/1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerDeleteForbiddenForUser(t *testing.T) {
	e, svc, _ := setupAPI(t, userActor)
	seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodDelete, "/api/v1/laporan/1", nil, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandlerExport(t *testing.T) {
	e, svc, _ := setupAPI(t, userActor)
	seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodGet, "/api/v1/laporan/export?format=csv", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %s", ct)
	}
	cd := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.HasPrefix(cd, "attachment; filename=laporan_simrs_") || !strings.HasSuffix(cd, ".csv") {
		t.Errorf("content disposition = %s", cd)
	}
	if !strings.Contains(rec.Body.String(), "Ana") {
		t.Error("export body missing report data")
	}

	// Default format is CSV
	rec = doReq(e, http.MethodGet, "/api/v1/laporan/export", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	rec = doReq(e, http.MethodGet, "/api/v1/laporan/export?format=pdf", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerUnits(t *testing.T) {
	e, svc, _ := setupAPI(t, userActor)
	seed(t, svc, "IGD", "Ana", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	seed(t, svc, "Farmasi", "Budi", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodGet, "/api/v1/laporan/units", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var units []string
	if err := json.Unmarshal(rec.Body.Bytes(), &units); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(units) != 2 {
		t.Errorf("units = %v", units)
	}
}

func TestHandlerStatistics(t *testing.T) {
	e, svc, _ := setupAPI(t, userActor)
	seed(t, svc, "IGD", "Ana", "Sistem Error", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	rec := doReq(e, http.MethodGet, "/api/v1/statistik", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats GlobalStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHandlerDownloadEvidence(t *testing.T) {
	e, svc, opener := setupAPI(t, userActor)

	lap, err := svc.Create(context.Background(), userActor, CreateInput{
		Unit: "IGD", Pelapor: "Ana", JenisKesalahan: "Lainnya",
		Deskripsi: "x", TglKejadian: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		EvidenceName: "bukti.png", Evidence: strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	opener.files[*lap.BuktiFile] = "png-bytes"

	rec := doReq(e, http.MethodGet, "/api/v1/laporan/1/bukti", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}

	// No evidence attached
	seed(t, svc, "Farmasi", "Budi", "Lainnya", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	rec = doReq(e, http.MethodGet, "/api/v1/laporan/2/bukti", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
