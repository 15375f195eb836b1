package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cross-origin browser clients are expected; auth happens via JWT
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades notification websocket connections and runs one
// coordinator per connection.
type WSHandler struct {
	hub                 *realtime.Hub
	notificationService *notifications.Service
	subscriber          realtime.Subscriber
	logger              *zap.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub, notificationService *notifications.Service, subscriber realtime.Subscriber, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:                 hub,
		notificationService: notificationService,
		subscriber:          subscriber,
		logger:              logger,
	}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws/notifications", h.Serve)
}

// connSink delivers coordinator alerts to a single websocket connection.
type connSink struct {
	conn *realtime.Connection
}

func (s *connSink) Alert(n models.Notification, label string) {
	_ = s.conn.WriteJSON(echo.Map{
		"type":         "notification",
		"label":        label,
		"notification": n,
	})
}

// clientMessage is what the browser sends over the socket.
type clientMessage struct {
	Action string `json:"action"` // mark_read, mark_all_read, refresh
	ID     string `json:"id,omitempty"`
}

// Serve upgrades the connection, loads the initial notification state and
// keeps it live until the client disconnects.
func (h *WSHandler) Serve(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	conn := h.hub.Add(claims.UserID, ws)
	defer h.hub.Remove(conn)

	ws.SetPongHandler(func(string) error {
		conn.Touch()
		return nil
	})

	ctx := c.Request().Context()
	coord := notifications.NewCoordinator(claims.UserID, h.notificationService, h.subscriber, &connSink{conn: conn}, h.logger)
	defer coord.Stop()

	if err := coord.Refresh(ctx); err != nil {
		h.logger.Warn("initial refresh failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
	if err := coord.Start(ctx); err != nil {
		h.logger.Warn("coordinator start failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}

	h.sendState(conn, coord)

	for {
		var msg clientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws read failed", zap.String("user_id", claims.UserID), zap.Error(err))
			}
			return nil
		}
		conn.Touch()

		switch msg.Action {
		case "mark_read":
			if err := coord.MarkAsRead(ctx, msg.ID); err != nil {
				h.sendError(conn, err)
				continue
			}
		case "mark_all_read":
			if _, err := coord.MarkAllAsRead(ctx); err != nil {
				h.sendError(conn, err)
				continue
			}
		case "refresh":
			if err := coord.Refresh(ctx); err != nil {
				h.sendError(conn, err)
				continue
			}
		default:
			continue
		}
		h.sendState(conn, coord)
	}
}

func (h *WSHandler) sendState(conn *realtime.Connection, coord *notifications.Coordinator) {
	_ = conn.WriteJSON(echo.Map{
		"type":  "state",
		"state": coord.Snapshot(),
	})
}

func (h *WSHandler) sendError(conn *realtime.Connection, err error) {
	_ = conn.WriteJSON(echo.Map{
		"type":  "error",
		"error": err.Error(),
	})
}
