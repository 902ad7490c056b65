package collab

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"sheetroom-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisRoomChannel = "sheetroom_room_events"

// Engine drives one room's persistence lifecycle. The hub creates an engine
// when a room gets its first client and closes it when the last one leaves.
type Engine interface {
	// Hydrate seeds the room document from storage.
	Hydrate(ctx context.Context) error

	// Mutate applies one client mutation with write-through persistence.
	Mutate(ctx context.Context, key string, rec CellRecord) error

	// Run blocks, driving periodic flush and transfer polling until Close.
	Run()

	// Close stops the tickers and runs a final flush. Safe to call once.
	Close(ctx context.Context) error
}

// EngineFactory builds an engine for a room. The emit callback delivers an
// already serialized frame to every client in the room.
type EngineFactory func(roomID string, doc *Document, emit func(data []byte)) Engine

// session is the live state of one room on this instance.
type session struct {
	roomID  string
	doc     *Document
	engine  Engine
	clients map[*Client]struct{}

	// ready closes once hydration finished; snapshots wait on it so a
	// joining client never sees an empty document for a persisted room.
	ready chan struct{}
}

type Hub struct {
	// Live sessions map: room id -> session
	sessions map[string]*session

	// Rooms with a teardown flush still in flight: room id -> channel
	// closed when the flush lands. A successor session for the same room
	// hydrates only after that.
	closing map[string]chan struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, may be nil
	rdb *redis.Client

	// instanceID marks relay payloads so this instance drops its own
	// frames coming back from Redis.
	instanceID string

	newEngine EngineFactory

	teardownTimeout time.Duration

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, newEngine EngineFactory, teardownTimeout time.Duration, log logger.ILogger) *Hub {
	return &Hub{
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		sessions:        make(map[string]*session),
		closing:         make(map[string]chan struct{}),
		rdb:             rdb,
		instanceID:      uuid.New().String(),
		newEngine:       newEngine,
		teardownTimeout: teardownTimeout,
		logger:          log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	sess, ok := h.sessions[client.RoomID]
	if !ok {
		sess = h.openSession(client.RoomID, h.closing[client.RoomID])
		h.sessions[client.RoomID] = sess
	}
	sess.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Hub", "Client registered", map[string]interface{}{
		"room_id": client.RoomID,
		"user_id": client.UserID,
	})

	// Snapshot-on-join: the new client gets the full document so it starts
	// from the same state everyone else already converged on. Delivered
	// asynchronously once hydration finished.
	go h.sendSnapshot(client, sess)
}

// openSession creates the room session and kicks off hydration in the
// background so a slow store read never stalls the hub. When the room's
// previous session still has its teardown flush in flight, hydration waits
// it out first, otherwise the fresh document could miss the flushed cells.
func (h *Hub) openSession(roomID string, prevClose <-chan struct{}) *session {
	doc := NewDocument()
	sess := &session{
		roomID:  roomID,
		doc:     doc,
		clients: make(map[*Client]struct{}),
		ready:   make(chan struct{}),
	}
	sess.engine = h.newEngine(roomID, doc, func(data []byte) {
		h.broadcastToRoom(roomID, data)
	})

	go func() {
		if prevClose != nil {
			<-prevClose
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.teardownTimeout)
		defer cancel()
		if err := sess.engine.Hydrate(ctx); err != nil {
			h.logger.Error("Hub", "Room hydration failed", map[string]interface{}{
				"room_id": roomID,
				"error":   err.Error(),
			})
		}
		go sess.engine.Run()
		close(sess.ready)

		h.logger.Info("Hub", "Session opened", map[string]interface{}{"room_id": roomID})
	}()

	return sess
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	sess, ok := h.sessions[client.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := sess.clients[client]; !member {
		h.mu.Unlock()
		return
	}
	delete(sess.clients, client)
	close(client.Send)

	var done chan struct{}
	last := len(sess.clients) == 0
	if last {
		delete(h.sessions, client.RoomID)
		done = make(chan struct{})
		h.closing[client.RoomID] = done
	}
	h.mu.Unlock()

	if last {
		// Last client left: tear the engine down with a final flush before
		// the in-memory document is dropped. A rejoin for the same room
		// waits on done so its hydration sees the flushed state.
		go func() {
			h.closeSession(sess)

			h.mu.Lock()
			if h.closing[sess.roomID] == done {
				delete(h.closing, sess.roomID)
			}
			h.mu.Unlock()
			close(done)
		}()
	}
}

func (h *Hub) closeSession(sess *session) {
	ctx, cancel := context.WithTimeout(context.Background(), h.teardownTimeout)
	defer cancel()

	if err := sess.engine.Close(ctx); err != nil {
		h.logger.Error("Hub", "Session teardown flush failed", map[string]interface{}{
			"room_id": sess.roomID,
			"error":   err.Error(),
		})
		return
	}
	h.logger.Info("Hub", "Session closed", map[string]interface{}{"room_id": sess.roomID})
}

// sendSnapshot waits for hydration and hands the client the full document.
func (h *Hub) sendSnapshot(client *Client, sess *session) {
	<-sess.ready

	data, _ := json.Marshal(SnapshotFrame{
		Type:  MessageTypeSnapshot,
		Room:  sess.roomID,
		Cells: sess.doc.Snapshot(),
	})

	// Membership is re-checked under the lock: a client that left during
	// hydration already had its Send channel closed.
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, member := sess.clients[client]; !member {
		return
	}
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full on snapshot", map[string]interface{}{
			"room_id": sess.roomID,
			"user_id": client.UserID,
		})
	}
}

// handleMessage dispatches one inbound client frame to the room engine.
func (h *Hub) handleMessage(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("Hub", "Invalid client frame", map[string]interface{}{
			"room_id": client.RoomID,
			"error":   err.Error(),
		})
		return
	}

	h.mu.RLock()
	sess, ok := h.sessions[client.RoomID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	switch msg.Type {
	case MessageTypeSet:
		if msg.Record == nil {
			return
		}
		if _, _, err := ParseCellKey(msg.Key); err != nil {
			h.logger.Warn("Hub", "Rejected mutation with bad key", map[string]interface{}{
				"room_id": client.RoomID,
				"key":     msg.Key,
			})
			return
		}
		rec := *msg.Record
		if rec.UpdatedBy == "" {
			rec.UpdatedBy = client.UserID
		}
		if err := sess.engine.Mutate(context.Background(), msg.Key, rec); err != nil {
			h.logger.Error("Hub", "Mutation failed", map[string]interface{}{
				"room_id": client.RoomID,
				"key":     msg.Key,
				"error":   err.Error(),
			})
		}

	default:
		h.logger.Warn("Hub", "Unknown message type", map[string]interface{}{
			"room_id": client.RoomID,
			"type":    msg.Type,
		})
	}
}

// broadcastToRoom fans a frame out to every local client of the room and
// relays it to other instances through Redis when configured.
func (h *Hub) broadcastToRoom(roomID string, data []byte) {
	h.mu.RLock()
	sess, ok := h.sessions[roomID]
	if ok {
		for client := range sess.clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{
					"room_id": roomID,
					"user_id": client.UserID,
				})
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload := relayPayload{
			Room:    roomID,
			Origin:  h.instanceID,
			Message: data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), redisRoomChannel, jsonPayload)
	}
}

// relayPayload is the cross-instance envelope on the Redis channel.
type relayPayload struct {
	Room    string          `json:"room"`
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisRoomChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		h.relayFrame([]byte(msg.Payload))
	}
}

// relayFrame delivers one relayed frame to the room's local clients. Frames
// this instance published itself are dropped, local clients already got
// them on the direct broadcast path.
func (h *Hub) relayFrame(raw []byte) {
	var payload relayPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("Redis msg parse error: %v", err)
		return
	}
	if payload.Origin == h.instanceID {
		return
	}

	h.mu.RLock()
	sess, ok := h.sessions[payload.Room]
	if ok {
		for client := range sess.clients {
			select {
			case client.Send <- payload.Message:
			default:
			}
		}
	}
	h.mu.RUnlock()
}
