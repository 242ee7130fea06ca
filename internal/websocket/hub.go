package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Hub manages one live connection per user. Each connection receives the
// events of every trip where the user is a confirmed member.
type Hub struct {
	log          *zap.SugaredLogger
	events       EventSubscriber
	trips        TripLister
	connections  map[int64]*Connection
	mu           sync.RWMutex
	shutdownOnce sync.Once
	sendBuffer   int
}

// EventSubscriber is the subscribe half of types.EventPublisher.
type EventSubscriber interface {
	Subscribe(ctx context.Context, tripID int64, userID int64, filters ...types.EventType) (<-chan types.Event, error)
	Unsubscribe(ctx context.Context, tripID int64, userID int64) error
}

// TripLister is the subset of store.TripStore used at registration.
type TripLister interface {
	ListTripsForUser(ctx context.Context, userID int64) ([]*types.TripWithMembership, error)
}

// Connection is a single user's socket and its trip subscriptions.
type Connection struct {
	UserID      int64
	Conn        *websocket.Conn
	TripIDs     []int64
	cancelFuncs map[int64]context.CancelFunc
	sendCh      chan types.Event
	done        chan struct{}
	mu          sync.Mutex
	closed      bool
}

type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   256,
	}
}

func NewHub(events EventSubscriber, trips TripLister, cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return &Hub{
		log:         logger.GetLogger().Named("websocket_hub"),
		events:      events,
		trips:       trips,
		connections: make(map[int64]*Connection),
		sendBuffer:  config.SendBuffer,
	}
}

// Register adds a connection for userID, replacing any previous one, and
// subscribes it to the user's confirmed trips.
func (h *Hub) Register(ctx context.Context, userID int64, conn *websocket.Conn) (*Connection, error) {
	trips, err := h.trips.ListTripsForUser(ctx, userID)
	if err != nil {
		h.log.Errorw("Failed to list trips for WebSocket registration", "userID", userID, "error", err)
		return nil, err
	}

	var tripIDs []int64
	for _, t := range trips {
		if types.IsConfirmedMember(&t.Trip, t.Membership) {
			tripIDs = append(tripIDs, t.ID)
		}
	}

	connection := &Connection{
		UserID:      userID,
		Conn:        conn,
		cancelFuncs: make(map[int64]context.CancelFunc),
		sendCh:      make(chan types.Event, h.sendBuffer),
		done:        make(chan struct{}),
	}

	h.mu.Lock()
	existing := h.connections[userID]
	h.connections[userID] = connection
	h.mu.Unlock()

	if existing != nil {
		h.closeConnection(existing, "replaced by new connection")
	}

	for _, tripID := range tripIDs {
		if err := h.subscribe(ctx, connection, tripID); err != nil {
			h.log.Warnw("Failed to subscribe to trip events", "userID", userID, "tripID", tripID, "error", err)
		}
	}

	h.log.Infow("WebSocket connection registered", "userID", userID, "tripCount", len(connection.Trips()))
	return connection, nil
}

func (h *Hub) subscribe(ctx context.Context, conn *Connection, tripID int64) error {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return nil
	}
	if _, ok := conn.cancelFuncs[tripID]; ok {
		conn.mu.Unlock()
		return nil
	}
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	conn.cancelFuncs[tripID] = cancel
	conn.TripIDs = append(conn.TripIDs, tripID)
	conn.mu.Unlock()

	eventCh, err := h.events.Subscribe(subCtx, tripID, conn.UserID)
	if err != nil {
		cancel()
		conn.mu.Lock()
		delete(conn.cancelFuncs, tripID)
		conn.TripIDs = removeID(conn.TripIDs, tripID)
		conn.mu.Unlock()
		return err
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-subCtx.Done():
				return
			case <-conn.done:
				return
			case event, ok := <-eventCh:
				if !ok {
					return
				}
				select {
				case conn.sendCh <- event:
				case <-conn.done:
					return
				default:
					h.log.Warnw("Connection send buffer full, dropping event",
						"userID", conn.UserID, "tripID", tripID, "eventType", event.Type)
				}
				// The member sees their own removal or decline, then nothing more.
				if concernsMembership(event, conn.UserID) && !h.stillConfirmed(subCtx, conn.UserID, tripID) {
					h.dropSubscription(conn, tripID)
					return
				}
			}
		}
	}()
	return nil
}

// concernsMembership reports whether event may have changed userID's
// standing in the trip.
func concernsMembership(event types.Event, userID int64) bool {
	switch event.Type {
	case types.EventTypeMemberRemoved, types.EventTypeMemberRSVPUpdated, types.EventTypeMemberPaymentReviewed:
	default:
		return false
	}
	var payload struct {
		UserID int64 `json:"userId"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return false
	}
	return payload.UserID == userID
}

// stillConfirmed re-reads userID's membership of tripID. Lookup failures keep
// the subscription; the next registration re-checks anyway.
func (h *Hub) stillConfirmed(ctx context.Context, userID, tripID int64) bool {
	trips, err := h.trips.ListTripsForUser(ctx, userID)
	if err != nil {
		h.log.Warnw("Failed to re-check trip membership", "userID", userID, "tripID", tripID, "error", err)
		return true
	}
	for _, t := range trips {
		if t.ID == tripID {
			return types.IsConfirmedMember(&t.Trip, t.Membership)
		}
	}
	return false
}

// dropSubscription ends conn's subscription to tripID.
func (h *Hub) dropSubscription(conn *Connection, tripID int64) {
	conn.mu.Lock()
	cancel, subscribed := conn.cancelFuncs[tripID]
	if subscribed {
		delete(conn.cancelFuncs, tripID)
		conn.TripIDs = removeID(conn.TripIDs, tripID)
	}
	conn.mu.Unlock()
	if !subscribed {
		return
	}

	cancel()
	if err := h.events.Unsubscribe(context.Background(), tripID, conn.UserID); err != nil {
		h.log.Debugw("Unsubscribe after membership change failed", "userID", conn.UserID, "tripID", tripID, "error", err)
	}
	h.log.Infow("Trip subscription revoked", "userID", conn.UserID, "tripID", tripID)
}

// Unregister closes and forgets userID's connection, if it is still conn.
func (h *Hub) Unregister(userID int64, conn *Connection) {
	h.mu.Lock()
	current, ok := h.connections[userID]
	if !ok || (conn != nil && current != conn) {
		h.mu.Unlock()
		if conn != nil {
			h.closeConnection(conn, "unregistered")
		}
		return
	}
	delete(h.connections, userID)
	h.mu.Unlock()

	h.closeConnection(current, "unregistered")
}

func (h *Hub) closeConnection(conn *Connection, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	close(conn.done)
	cancels := conn.cancelFuncs
	conn.cancelFuncs = map[int64]context.CancelFunc{}
	conn.mu.Unlock()

	for tripID, cancel := range cancels {
		cancel()
		if err := h.events.Unsubscribe(context.Background(), tripID, conn.UserID); err != nil {
			h.log.Debugw("Unsubscribe on close failed", "userID", conn.UserID, "tripID", tripID, "error", err)
		}
	}

	if conn.Conn != nil {
		_ = conn.Conn.Close(websocket.StatusNormalClosure, reason)
	}
	h.log.Infow("WebSocket connection closed", "userID", conn.UserID, "reason", reason)
}

// AddTripSubscription subscribes a connected user to tripID, e.g. after
// their RSVP is confirmed mid-session. No-op when the user is offline.
func (h *Hub) AddTripSubscription(ctx context.Context, userID, tripID int64) error {
	conn, ok := h.GetConnection(userID)
	if !ok {
		return nil
	}
	return h.subscribe(ctx, conn, tripID)
}

// RemoveTripSubscription stops delivering tripID's events to userID.
func (h *Hub) RemoveTripSubscription(ctx context.Context, userID, tripID int64) error {
	conn, ok := h.GetConnection(userID)
	if !ok {
		return nil
	}
	h.dropSubscription(conn, tripID)
	return nil
}

func (h *Hub) GetConnection(userID int64) (*Connection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.connections[userID]
	return conn, ok
}

// GetConnectionCount feeds the health endpoint.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[int64]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, "server shutdown")
		}
	})
	h.log.Info("WebSocket hub shutdown complete")
	return nil
}

// SendChannel yields events destined for this connection.
func (c *Connection) SendChannel() <-chan types.Event {
	return c.sendCh
}

// Done is closed once the connection is torn down.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Trips returns a snapshot of the subscribed trip IDs.
func (c *Connection) Trips() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.TripIDs...)
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
