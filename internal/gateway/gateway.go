// Package gateway provides the WebSocket front end that delivers user
// events to the dialogue engine and pushes replies back.
//
// The gateway itself is stateless: per-user serialization happens in the
// session store, not here, so every inbound message is handled in its own
// goroutine.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kisses-noo/rpp-lab/internal/dialog"
	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// inboundMessage is what a chat client sends: free text or a button token.
type inboundMessage struct {
	Text  string `json:"text,omitempty"`
	Token string `json:"token,omitempty"`
}

// Server handles WebSocket chat connections.
type Server struct {
	engine   *dialog.Engine
	upgrader websocket.Upgrader
}

// NewServer creates a new gateway server.
func NewServer(engine *dialog.Engine) *Server {
	return &Server{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers routes with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", s.HandleWebSocket)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
}

// HandleWebSocket upgrades the connection and pumps messages through the
// dialogue engine. Clients identify themselves with the user_id query param.
// GET /ws?user_id=42
func (s *Server) HandleWebSocket(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return err
	}

	connID := "conn_" + uuid.New().String()[:8]
	slog.Info("client connected", "conn_id", connID, "user_id", userID)
	// The request context dies when this handler returns; the pump outlives it.
	go s.readPump(context.Background(), ws, connID, userID)
	return nil
}

// readPump reads inbound messages until the connection closes. Replies may
// be written from concurrent turns, so writes share a mutex.
func (s *Server) readPump(ctx context.Context, ws *websocket.Conn, connID, userID string) {
	defer func() {
		ws.Close()
		slog.Info("client disconnected", "conn_id", connID, "user_id", userID)
	}()

	var writeMu sync.Mutex

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "conn_id", connID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			writeReply(ws, &writeMu, connID, domain.Reply{UserID: userID, Text: "Malformed message."})
			continue
		}

		ev := domain.Event{UserID: userID, Text: msg.Text, Token: domain.Token(msg.Token)}
		go func() {
			reply := s.engine.Handle(ctx, ev)
			writeReply(ws, &writeMu, connID, reply)
		}()
	}
}

func writeReply(ws *websocket.Conn, mu *sync.Mutex, connID string, reply domain.Reply) {
	mu.Lock()
	defer mu.Unlock()

	if err := ws.WriteJSON(reply); err != nil {
		slog.Warn("failed to write reply", "conn_id", connID, "error", err)
	}
}
