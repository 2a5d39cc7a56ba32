package savedsearch

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/simrs/bap/internal/domain/report"
	"github.com/simrs/bap/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	group := api.Group("/preferensi", auth.RequireRole(auth.RoleUser))
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/params", h.Load)
	group.DELETE("/:id", h.Delete)
}

type createRequest struct {
	Name string `json:"name"`
	report.SearchParams
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	pref, err := h.svc.Create(c.Request().Context(), actor, req.Name, req.SearchParams)
	if err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, ErrConflict.Error())
		case errors.Is(err, ErrInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Msg("failed to save preference")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preference")
		}
	}
	return c.JSON(http.StatusCreated, pref)
}

func (h *Handler) List(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	prefs, err := h.svc.List(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list preferences")
	}
	if prefs == nil {
		prefs = []*SearchPreference{}
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	pref, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load preference")
	}
	return c.JSON(http.StatusOK, pref)
}

// Load returns the stored snapshot as dashboard query parameters, ready to
// feed back into the report search.
func (h *Handler) Load(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	params, err := h.svc.Load(c.Request().Context(), actor, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load preference")
	}
	return c.JSON(http.StatusOK, params)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete preference")
	}
	return c.NoContent(http.StatusNoContent)
}
