// Package api provides the HTTP handlers for the three collaborator
// services: the currency manager, the ledger/data service and the role
// service.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/store"
	"github.com/kisses-noo/rpp-lab/internal/validate"
)

// CurrencyHandler serves the currency management endpoints.
type CurrencyHandler struct {
	store store.Store
}

// NewCurrencyHandler creates a new currency handler.
func NewCurrencyHandler(st store.Store) *CurrencyHandler {
	return &CurrencyHandler{store: st}
}

// RegisterRoutes registers routes with the echo server.
func (h *CurrencyHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/load", h.Load)
	e.POST("/update_currency", h.UpdateCurrency)
	e.POST("/delete", h.Delete)
	e.GET("/health", Health)
}

type currencyRequest struct {
	CurrencyName string          `json:"currency_name"`
	Rate         decimal.Decimal `json:"rate"`
	NewRate      decimal.Decimal `json:"new_rate"`
}

// Load adds a new currency.
// POST /load
func (h *CurrencyHandler) Load(c echo.Context) error {
	var req currencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	code, err := validate.CurrencyCode(req.CurrencyName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if !req.Rate.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rate must be positive"})
	}

	rec := domain.CurrencyRecord{Code: code, Rate: req.Rate}
	if err := h.store.InsertCurrency(c.Request().Context(), rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "currency already exists"})
		}
		slog.Error("failed to insert currency", "code", code, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add currency"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "currency added"})
}

// UpdateCurrency changes the rate of an existing currency.
// POST /update_currency
func (h *CurrencyHandler) UpdateCurrency(c echo.Context) error {
	var req currencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	code, err := validate.CurrencyCode(req.CurrencyName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if !req.NewRate.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rate must be positive"})
	}

	if err := h.store.UpdateCurrencyRate(c.Request().Context(), code, req.NewRate); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "currency not found"})
		}
		slog.Error("failed to update currency", "code", code, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update currency"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "rate updated"})
}

// Delete removes a currency.
// POST /delete
func (h *CurrencyHandler) Delete(c echo.Context) error {
	var req currencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	code, err := validate.CurrencyCode(req.CurrencyName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.store.DeleteCurrency(c.Request().Context(), code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "currency not found"})
		}
		slog.Error("failed to delete currency", "code", code, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete currency"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "currency deleted"})
}

// Health returns health status.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
