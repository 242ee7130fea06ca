package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/crewtrip-backend/config"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/middleware"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypeEvent        = "event"
	MessageTypeConnected    = "connected"
	MessageTypeError        = "error"
)

// Handler upgrades authenticated requests and streams trip events.
type Handler struct {
	log            *zap.SugaredLogger
	hub            *Hub
	gate           types.MemberGate
	pingInterval   time.Duration
	writeTimeout   time.Duration
	originPatterns []string
	skipOrigin     bool
}

func NewHandler(hub *Hub, serverCfg *config.ServerConfig, gate types.MemberGate) *Handler {
	hubCfg := DefaultHubConfig()
	patterns, anyOrigin := originPatterns(serverCfg.AllowedOrigins)
	return &Handler{
		log:            logger.GetLogger().Named("websocket_handler"),
		hub:            hub,
		gate:           gate,
		pingInterval:   hubCfg.PingInterval,
		writeTimeout:   hubCfg.WriteTimeout,
		originPatterns: patterns,
		skipOrigin:     anyOrigin || serverCfg.Environment == config.EnvDevelopment,
	}
}

// originPatterns converts configured origins ("https://app.example.com")
// into the host patterns websocket.Accept matches against.
func originPatterns(origins []string) ([]string, bool) {
	var patterns []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			return nil, true
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		patterns = append(patterns, o)
	}
	return patterns, len(patterns) == 0
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{CompressionMode: websocket.CompressionContextTakeover}
	if h.skipOrigin {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.originPatterns
	}
	return opts
}

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type tripPayload struct {
	TripID int64 `json:"tripId"`
}

// HandleWebSocket godoc
// @Summary Trip event stream
// @Description Upgrades to a WebSocket that pushes events for every trip where the caller is a confirmed member. The token may be passed as ?token= for clients that cannot set headers.
// @Tags realtime
// @Param token query string false "Bearer token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} types.ErrorResponse "Unauthorized"
// @Router /ws [get]
// @Security BearerAuth
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{
			Type:    "AUTHENTICATION_ERROR",
			Message: "Authentication required",
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection", "userID", userID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	connection, err := h.hub.Register(ctx, userID, conn)
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}
	defer h.hub.Unregister(userID, connection)

	trips := connection.Trips()
	if err := h.send(ctx, conn, ServerMessage{
		Type:    MessageTypeConnected,
		Payload: map[string]interface{}{"userId": userID, "trips": trips},
	}); err != nil {
		h.log.Warnw("Failed to send connected message", "userID", userID, "error", err)
		return
	}
	h.log.Infow("WebSocket connection established", "userID", userID, "tripCount", len(trips))

	errCh := make(chan error, 3)
	go func() { errCh <- h.readLoop(ctx, conn, userID) }()
	go func() { errCh <- h.writeLoop(ctx, conn, connection) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
		h.log.Warnw("WebSocket connection error", "userID", userID, "error", err)
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, userID int64) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		h.handleClientMessage(ctx, conn, userID, msg)
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connection *Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-connection.Done():
			return nil
		case event := <-connection.SendChannel():
			if err := h.send(ctx, conn, ServerMessage{Type: MessageTypeEvent, Payload: event}); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) handleClientMessage(ctx context.Context, conn *websocket.Conn, userID int64, msg ClientMessage) {
	switch msg.Type {
	case MessageTypePing:
		_ = h.send(ctx, conn, ServerMessage{Type: MessageTypePong})

	case MessageTypeSubscribe:
		var p tripPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.TripID <= 0 {
			_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeError, Error: "Invalid subscribe request: tripId required"})
			return
		}
		if _, err := h.gate.RequireConfirmedMember(ctx, p.TripID, userID); err != nil {
			h.log.Warnw("Rejected trip subscription", "userID", userID, "tripID", p.TripID, "error", err)
			_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeError, Error: "Not authorized to subscribe to this trip"})
			return
		}
		if err := h.hub.AddTripSubscription(ctx, userID, p.TripID); err != nil {
			_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeError, Error: "Failed to subscribe to trip"})
			return
		}
		_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeSubscribed, Payload: p})

	case MessageTypeUnsubscribe:
		var p tripPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.TripID <= 0 {
			_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeError, Error: "Invalid unsubscribe request: tripId required"})
			return
		}
		if err := h.hub.RemoveTripSubscription(ctx, userID, p.TripID); err != nil {
			_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeError, Error: "Failed to unsubscribe from trip"})
			return
		}
		_ = h.send(ctx, conn, ServerMessage{Type: MessageTypeUnsubscribed, Payload: p})

	default:
		h.log.Debugw("Unknown message type from client", "userID", userID, "type", msg.Type)
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
