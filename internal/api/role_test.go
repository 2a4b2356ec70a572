package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

func TestIsAdminEndpoint(t *testing.T) {
	e := echo.New()
	st := newTestStore(t)
	h := NewRoleHandler(st)

	require.NoError(t, st.AddAdmin(context.Background(), "42"))

	check := func(chatID, want string) {
		req := httptest.NewRequest(http.MethodGet, "/is_admin/"+chatID, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("chat_id")
		c.SetParamValues(chatID)
		require.NoError(t, h.IsAdmin(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), want)
	}

	check("42", `"is_admin":true`)
	check("7", `"is_admin":false`)
}

func TestGetRatePrefersStoredCurrency(t *testing.T) {
	e := echo.New()
	st := newTestStore(t)
	h := NewRoleHandler(st)

	require.NoError(t, st.InsertCurrency(context.Background(),
		domain.CurrencyRecord{Code: "USD", Rate: decimal.RequireFromString("90.00")}))

	rec := getRequest(t, e, "/rate?currency=USD", h.GetRate)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "90")
}

func TestGetRateFallsBackToDefaults(t *testing.T) {
	e := echo.New()
	h := NewRoleHandler(newTestStore(t))

	rec := getRequest(t, e, "/rate?currency=usd", h.GetRate)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "75.5")
}

func TestGetRateUnknownCurrency(t *testing.T) {
	e := echo.New()
	h := NewRoleHandler(newTestStore(t))

	rec := getRequest(t, e, "/rate?currency=XYZ", h.GetRate)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
