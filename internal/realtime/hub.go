// Package realtime pushes roster updates to connected clients. Dashboards
// subscribe per game over WebSocket; Redis pub/sub fans events out across
// server instances.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// RedisPublisher publishes game events to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishGameEvent(gameID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to game channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeGame(gameID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains game_id -> set of connections and broadcasts roster events.
type Hub struct {
	games  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per game
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RedisPublisher
	sub    RedisSubscriber
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for
// single-instance deployments.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	return &Hub{
		games:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// RosterChanged publishes a roster event for the game. With Redis
// configured it publishes only, so the subscription callback broadcasts
// once per instance; otherwise it broadcasts locally. Implements the
// state machine's RosterEvents interface.
func (h *Hub) RosterChanged(gameID uuid.UUID, event string) {
	payload, _ := json.Marshal(map[string]int64{"at": time.Now().Unix()})
	if h.pub != nil {
		if err := h.pub.PublishGameEvent(gameID, event, payload); err != nil {
			h.logger.Warn("publish roster event failed", zap.Error(err), zap.String("game_id", gameID.String()))
		}
		return
	}
	h.broadcast(gameID, event, payload)
}

// Register adds a client to a game room. Starts the Redis subscription
// for this game when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.games[c.GameID] == nil {
		h.games[c.GameID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeGame(c.GameID, func(event string, payload []byte) {
				h.broadcast(c.GameID, event, payload)
			})
			if err == nil {
				h.subs[c.GameID] = cancel
			} else {
				h.logger.Warn("game subscription failed", zap.Error(err), zap.String("game_id", c.GameID.String()))
			}
		}
	}
	h.games[c.GameID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined game room", zap.String("client_id", c.ID), zap.String("game_id", c.GameID.String()))
}

// Unregister removes a client from a game room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.games[c.GameID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.games, c.GameID)
			if cancel, ok := h.subs[c.GameID]; ok {
				cancel()
				delete(h.subs, c.GameID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left game room", zap.String("client_id", c.ID), zap.String("game_id", c.GameID.String()))
}

func (h *Hub) broadcast(gameID uuid.UUID, event string, payload []byte) {
	msg := WSMessage{Event: event, Data: payload}

	h.mu.RLock()
	clients := h.games[gameID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
