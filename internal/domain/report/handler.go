package report

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/simrs/bap/internal/platform/auth"
	"github.com/simrs/bap/internal/platform/filestore"
	"github.com/simrs/bap/pkg/pagination"
)

// EvidenceOpener serves stored evidence files for download.
type EvidenceOpener interface {
	Open(name string) (io.ReadCloser, error)
}

type Handler struct {
	svc      *Service
	evidence EvidenceOpener
}

// isClientError reports whether a submission failure may be echoed back to
// the client. Everything else is a storage failure and stays server-side.
func isClientError(err error) bool {
	return errors.Is(err, ErrInvalid) ||
		errors.Is(err, filestore.ErrInvalidExtension) ||
		errors.Is(err, filestore.ErrFileTooLarge) ||
		errors.Is(err, filestore.ErrMissingFileName)
}

func NewHandler(svc *Service, evidence EvidenceOpener) *Handler {
	return &Handler{svc: svc, evidence: evidence}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Any authenticated user may read, search, submit and triage
	group := api.Group("", auth.RequireRole(auth.RoleUser))
	group.GET("/laporan", h.Dashboard)
	group.POST("/laporan", h.Create)
	group.GET("/laporan/export", h.Export)
	group.GET("/laporan/units", h.Units)
	group.GET("/laporan/:id", h.Get)
	group.PUT("/laporan/:id/status", h.UpdateStatus)
	group.GET("/laporan/:id/bukti", h.DownloadEvidence)
	group.GET("/statistik", h.Statistics)

	// Deleting a report is admin only
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/laporan/:id", h.Delete)
}

// Dashboard returns one page of the filtered report log plus statistics over
// the whole filtered set.
func (h *Handler) Dashboard(c echo.Context) error {
	var params SearchParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := pagination.FromContext(c)

	reports, stats, err := h.svc.Search(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}
	if reports == nil {
		reports = []*Laporan{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"laporan": pagination.NewResponse(reports, stats.Total, p),
		"stats":   stats,
	})
}

// tglKejadianLayouts accepts the HTML datetime-local wire format plus common
// variants.
var tglKejadianLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTglKejadian(s string) (time.Time, error) {
	for _, layout := range tglKejadianLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid tgl_kejadian %q", s)
}

// Create accepts a multipart report submission with an optional evidence
// file under the "bukti_file" field.
func (h *Handler) Create(c echo.Context) error {
	tgl, err := parseTglKejadian(c.FormValue("tgl_kejadian"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := CreateInput{
		Unit:           c.FormValue("unit"),
		Pelapor:        c.FormValue("pelapor"),
		ModulSIMRS:     c.FormValue("modul_simrs"),
		JenisKesalahan: c.FormValue("jenis_kesalahan"),
		Deskripsi:      c.FormValue("deskripsi"),
		TglKejadian:    tgl,
	}

	if fh, err := c.FormFile("bukti_file"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
		}
		defer f.Close()
		in.Evidence = f
		in.EvidenceName = fh.Filename
	}

	actor := auth.ActorFromContext(c.Request().Context())
	lap, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		if isClientError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		log.Error().Err(err).Msg("failed to create laporan")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create laporan")
	}
	return c.JSON(http.StatusCreated, lap)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	lap, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "laporan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load laporan")
	}
	return c.JSON(http.StatusOK, lap)
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	AssignedTo *int64 `json:"assigned_to"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// assigned_to: 0 means "unassigned"
	if req.AssignedTo != nil && *req.AssignedTo == 0 {
		req.AssignedTo = nil
	}

	actor := auth.ActorFromContext(c.Request().Context())
	lap, err := h.svc.UpdateStatus(c.Request().Context(), actor, id, req.Status, req.AssignedTo)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "laporan not found")
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Int64("laporan_id", id).Msg("failed to update laporan")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update laporan")
		}
	}
	return c.JSON(http.StatusOK, lap)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "laporan not found")
		case errors.Is(err, ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete laporan")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Export re-runs the current filter over the whole set and sends the result
// as a CSV or XLSX attachment. A generation failure never sends a partial
// file: the body is fully rendered before the first byte goes out.
func (h *Handler) Export(c echo.Context) error {
	var params SearchParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatExcel {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
	}

	file, err := h.svc.Export(c.Request().Context(), params, format)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate export")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) Units(c echo.Context) error {
	units, err := h.svc.Units(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load units")
	}
	if units == nil {
		units = []string{}
	}
	return c.JSON(http.StatusOK, units)
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

// DownloadEvidence streams the report's stored evidence file.
func (h *Handler) DownloadEvidence(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	lap, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "laporan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load laporan")
	}
	if lap.BuktiFile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "laporan has no evidence file")
	}

	rc, err := h.evidence.Open(*lap.BuktiFile)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "evidence file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open evidence file")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", *lap.BuktiFile))
	return c.Stream(http.StatusOK, "application/octet-stream", rc)
}
