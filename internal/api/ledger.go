package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/store"
	"github.com/kisses-noo/rpp-lab/internal/validate"
)

// LedgerHandler serves the data service: currency listing and conversion,
// user registration and ledger operations.
type LedgerHandler struct {
	store store.Store
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(st store.Store) *LedgerHandler {
	return &LedgerHandler{store: st}
}

// RegisterRoutes registers routes with the echo server.
func (h *LedgerHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/currencies", h.ListCurrencies)
	e.GET("/convert", h.Convert)
	e.POST("/register", h.Register)
	e.GET("/users/:chat_id", h.GetUser)
	e.POST("/operations", h.AddOperation)
	e.GET("/operations", h.ListOperations)
	e.GET("/health", Health)
}

type currencyPayload struct {
	CurrencyName string `json:"currency_name"`
	Rate         string `json:"rate"`
}

// ListCurrencies returns all stored currencies.
// GET /currencies
func (h *LedgerHandler) ListCurrencies(c echo.Context) error {
	records, err := h.store.ListCurrencies(c.Request().Context())
	if err != nil {
		slog.Error("failed to list currencies", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list currencies"})
	}

	payload := make([]currencyPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, currencyPayload{
			CurrencyName: rec.Code,
			Rate:         rec.Rate.StringFixed(2),
		})
	}
	return c.JSON(http.StatusOK, payload)
}

// Convert converts an amount of a currency into the base unit.
// GET /convert?currency_name=USD&amount=10
func (h *LedgerHandler) Convert(c echo.Context) error {
	code, err := validate.CurrencyCode(c.QueryParam("currency_name"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	amount, err := validate.Amount(c.QueryParam("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.store.GetCurrency(c.Request().Context(), code)
	if err != nil {
		slog.Error("failed to get currency", "code", code, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get currency"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "currency not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"converted_amount": amount.Mul(rec.Rate),
		"rate":             rec.Rate,
	})
}

type registerRequest struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// Register stores a one-shot user registration.
// POST /register
func (h *LedgerHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ChatID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "chat_id and name are required"})
	}

	user := domain.UserRegistration{OwnerID: req.ChatID, DisplayName: req.Name}
	if err := h.store.RegisterUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "user already registered"})
		}
		slog.Error("failed to register user", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to register user"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "registered"})
}

// GetUser reports whether a chat id is registered.
// GET /users/:chat_id
func (h *LedgerHandler) GetUser(c echo.Context) error {
	chatID := c.Param("chat_id")
	user, err := h.store.GetUser(c.Request().Context(), chatID)
	if err != nil {
		slog.Error("failed to get user", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
	}

	resp := map[string]any{"registered": user != nil}
	if user != nil {
		resp["name"] = user.DisplayName
	}
	return c.JSON(http.StatusOK, resp)
}

type operationRequest struct {
	Date          string          `json:"date"`
	Sum           decimal.Decimal `json:"sum"`
	ChatID        string          `json:"chat_id"`
	TypeOperation string          `json:"type_operation"`
}

// AddOperation stores a committed ledger entry.
// POST /operations
func (h *LedgerHandler) AddOperation(c echo.Context) error {
	var req operationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	date, err := validate.Date(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if !req.Sum.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sum must be positive"})
	}
	kind := domain.EntryKind(req.TypeOperation)
	if kind != domain.EntryIncome && kind != domain.EntryExpense {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type_operation must be INCOME or EXPENSE"})
	}
	if req.ChatID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "chat_id is required"})
	}

	entry := domain.LedgerEntry{
		ID:      "op_" + uuid.New().String()[:8],
		Date:    date,
		Amount:  req.Sum,
		OwnerID: req.ChatID,
		Kind:    kind,
	}
	if err := h.store.InsertEntry(c.Request().Context(), entry); err != nil {
		slog.Error("failed to insert operation", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add operation"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "operation added", "id": entry.ID})
}

type operationPayload struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Sum           string `json:"sum"`
	ChatID        string `json:"chat_id"`
	TypeOperation string `json:"type_operation"`
}

// ListOperations returns the user's operations ordered by date.
// GET /operations?chat_id=42&order=ASC
func (h *LedgerHandler) ListOperations(c echo.Context) error {
	chatID := c.QueryParam("chat_id")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "chat_id is required"})
	}
	order := domain.SortAsc
	if c.QueryParam("order") == string(domain.SortDesc) {
		order = domain.SortDesc
	}

	entries, err := h.store.ListEntries(c.Request().Context(), chatID, order)
	if err != nil {
		slog.Error("failed to list operations", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list operations"})
	}

	payload := make([]operationPayload, 0, len(entries))
	for _, e := range entries {
		payload = append(payload, operationPayload{
			ID:            e.ID,
			Date:          e.Date.Format("2006-01-02"),
			Sum:           e.Amount.StringFixed(2),
			ChatID:        e.OwnerID,
			TypeOperation: string(e.Kind),
		})
	}
	return c.JSON(http.StatusOK, payload)
}
