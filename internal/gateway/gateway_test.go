package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisses-noo/rpp-lab/internal/dialog"
	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/gateway"
	"github.com/kisses-noo/rpp-lab/internal/session"
)

// stubBackend satisfies the engine's collaborator surface with empty data.
type stubBackend struct{}

func (stubBackend) IsAdmin(context.Context, string) (bool, error) { return false, nil }
func (stubBackend) GetRate(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, domain.ErrNotFound
}
func (stubBackend) UpsertCurrency(context.Context, string, decimal.Decimal) error { return nil }
func (stubBackend) UpdateRate(context.Context, string, decimal.Decimal) error     { return nil }
func (stubBackend) DeleteCurrency(context.Context, string) error                  { return nil }
func (stubBackend) ListCurrencies(context.Context) ([]domain.CurrencyRecord, error) {
	return nil, nil
}
func (stubBackend) Convert(context.Context, string, decimal.Decimal) (domain.Conversion, error) {
	return domain.Conversion{}, domain.ErrNotFound
}
func (stubBackend) RegisterUser(context.Context, string, string) error { return nil }
func (stubBackend) IsRegistered(context.Context, string) (bool, error) { return false, nil }
func (stubBackend) AddEntry(context.Context, domain.LedgerEntry) error { return nil }
func (stubBackend) ListEntries(context.Context, string, domain.SortOrder) ([]domain.LedgerEntry, error) {
	return nil, nil
}

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	engine := dialog.NewEngine(session.NewStore(), stubBackend{})
	e := echo.New()
	gateway.NewServer(engine).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user_id=" + userID
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv := newTestGateway(t)
	ws := dialWS(t, srv, "u1")

	require.NoError(t, ws.WriteJSON(map[string]string{"text": "/help"}))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply domain.Reply
	require.NoError(t, ws.ReadJSON(&reply))

	assert.Equal(t, "u1", reply.UserID)
	assert.Contains(t, reply.Text, "Available commands")
}

func TestWebSocketMalformedMessage(t *testing.T) {
	srv := newTestGateway(t)
	ws := dialWS(t, srv, "u1")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply domain.Reply
	require.NoError(t, ws.ReadJSON(&reply))
	assert.Equal(t, "Malformed message.", reply.Text)
}

func TestWebSocketRequiresUserID(t *testing.T) {
	srv := newTestGateway(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
