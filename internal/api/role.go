package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/store"
	"github.com/kisses-noo/rpp-lab/internal/validate"
)

// defaultRates answers rate lookups for currencies nobody has loaded yet.
var defaultRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("75.50"),
	"EUR": decimal.RequireFromString("80.20"),
}

// RoleHandler serves the role service: admin checks and rate lookups.
type RoleHandler struct {
	store store.Store
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(st store.Store) *RoleHandler {
	return &RoleHandler{store: st}
}

// RegisterRoutes registers routes with the echo server.
func (h *RoleHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/is_admin/:chat_id", h.IsAdmin)
	e.GET("/rate", h.GetRate)
	e.GET("/health", Health)
}

// IsAdmin reports whether a chat id belongs to an admin.
// GET /is_admin/:chat_id
func (h *RoleHandler) IsAdmin(c echo.Context) error {
	chatID := c.Param("chat_id")
	isAdmin, err := h.store.IsAdmin(c.Request().Context(), chatID)
	if err != nil {
		slog.Error("failed to check admin", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check admin"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

// GetRate returns the rate for a currency, preferring the loaded currencies
// over the static defaults.
// GET /rate?currency=USD
func (h *RoleHandler) GetRate(c echo.Context) error {
	code, err := validate.CurrencyCode(c.QueryParam("currency"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.store.GetCurrency(c.Request().Context(), code)
	if err != nil {
		slog.Error("failed to get currency", "code", code, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get rate"})
	}
	if rec != nil {
		return c.JSON(http.StatusOK, map[string]decimal.Decimal{"rate": rec.Rate})
	}
	if rate, ok := defaultRates[code]; ok {
		return c.JSON(http.StatusOK, map[string]decimal.Decimal{"rate": rate})
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "currency not found"})
}
