package collab

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sheetroom-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	hydrated int32
	running  int32
	closed   int32
	doc      *Document
}

func (f *fakeEngine) Hydrate(ctx context.Context) error {
	atomic.AddInt32(&f.hydrated, 1)
	return nil
}

func (f *fakeEngine) Mutate(ctx context.Context, key string, rec CellRecord) error {
	f.doc.Set(key, rec)
	return nil
}

func (f *fakeEngine) Run() {
	atomic.AddInt32(&f.running, 1)
}

func (f *fakeEngine) Close(ctx context.Context) error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

func newTestHub(t *testing.T) (*Hub, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{}
	factory := func(roomID string, doc *Document, emit func(data []byte)) Engine {
		engine.doc = doc
		return engine
	}
	hub := NewHub(nil, factory, time.Second, logger.NewIsolatedLogger(t.TempDir()+"/hub.log"))
	go hub.Run()
	return hub, engine
}

func newTestClient(hub *Hub, roomID, userID string) *Client {
	return &Client{Hub: hub, RoomID: roomID, UserID: userID, Send: make(chan []byte, 256)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestFirstJoinOpensSessionAndSendsSnapshot(t *testing.T) {
	hub, engine := newTestHub(t)

	client := newTestClient(hub, "workbook:w1", "alice")
	hub.register <- client

	var frame struct {
		Type  string                `json:"type"`
		Room  string                `json:"room"`
		Cells map[string]CellRecord `json:"cells"`
	}
	select {
	case data := <-client.Send:
		require.NoError(t, json.Unmarshal(data, &frame))
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}

	assert.Equal(t, MessageTypeSnapshot, frame.Type)
	assert.Equal(t, "workbook:w1", frame.Room)
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.hydrated))
	waitFor(t, func() bool { return atomic.LoadInt32(&engine.running) == 1 })
}

func TestSecondJoinReusesSession(t *testing.T) {
	hub, engine := newTestHub(t)

	first := newTestClient(hub, "workbook:w1", "alice")
	second := newTestClient(hub, "workbook:w1", "bob")
	hub.register <- first
	hub.register <- second

	<-first.Send
	<-second.Send

	// One session, one hydration, no matter how many clients.
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.hydrated))
}

func TestLastLeaveClosesEngine(t *testing.T) {
	hub, engine := newTestHub(t)

	first := newTestClient(hub, "workbook:w1", "alice")
	second := newTestClient(hub, "workbook:w1", "bob")
	hub.register <- first
	hub.register <- second
	<-first.Send
	<-second.Send

	hub.unregister <- first
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&engine.closed), "engine must stay up while a client remains")

	hub.unregister <- second
	waitFor(t, func() bool { return atomic.LoadInt32(&engine.closed) == 1 })
}

func TestInboundSetReachesEngine(t *testing.T) {
	hub, engine := newTestHub(t)

	client := newTestClient(hub, "workbook:w1", "alice")
	hub.register <- client
	<-client.Send

	raw, _ := json.Marshal(Message{
		Type:   MessageTypeSet,
		Key:    "1,2",
		Record: &CellRecord{Value: "42", UpdatedAt: 100},
	})
	hub.handleMessage(client, raw)

	rec, ok := engine.doc.Get("1,2")
	require.True(t, ok)
	assert.Equal(t, "42", rec.Value)
	// Missing writer id falls back to the connection's user.
	assert.Equal(t, "alice", rec.UpdatedBy)
}

func TestBroadcastReachesAllRoomClients(t *testing.T) {
	hub, _ := newTestHub(t)

	first := newTestClient(hub, "workbook:w1", "alice")
	second := newTestClient(hub, "workbook:w1", "bob")
	outsider := newTestClient(hub, "workbook:w2", "carol")
	hub.register <- first
	hub.register <- second
	hub.register <- outsider
	<-first.Send
	<-second.Send
	<-outsider.Send

	hub.broadcastToRoom("workbook:w1", []byte(`{"type":"update"}`))

	assert.Len(t, first.Send, 1)
	assert.Len(t, second.Send, 1)
	assert.Len(t, outsider.Send, 0)
}

// gatedEngine parks Hydrate or Close on a channel so lifecycle ordering can
// be pinned down in tests.
type gatedEngine struct {
	doc         *Document
	hydrateGate chan struct{}
	closeGate   chan struct{}
	record      func(step string)
}

func (g *gatedEngine) Hydrate(ctx context.Context) error {
	if g.hydrateGate != nil {
		<-g.hydrateGate
	}
	if g.record != nil {
		g.record("hydrate")
	}
	return nil
}

func (g *gatedEngine) Mutate(ctx context.Context, key string, rec CellRecord) error {
	g.doc.Set(key, rec)
	return nil
}

func (g *gatedEngine) Run() {}

func (g *gatedEngine) Close(ctx context.Context) error {
	if g.closeGate != nil {
		<-g.closeGate
	}
	if g.record != nil {
		g.record("close")
	}
	return nil
}

func TestSlowHydrationDoesNotBlockOtherRooms(t *testing.T) {
	gate := make(chan struct{})
	factory := func(roomID string, doc *Document, emit func(data []byte)) Engine {
		e := &gatedEngine{doc: doc}
		if roomID == "workbook:slow" {
			e.hydrateGate = gate
		}
		return e
	}
	hub := NewHub(nil, factory, time.Second, logger.NewIsolatedLogger(t.TempDir()+"/hub.log"))
	go hub.Run()

	slow := newTestClient(hub, "workbook:slow", "alice")
	hub.register <- slow

	fast := newTestClient(hub, "workbook:fast", "bob")
	hub.register <- fast

	// The fast room's snapshot arrives while the slow hydration is parked.
	select {
	case <-fast.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("join blocked behind another room's hydration")
	}

	close(gate)
	select {
	case <-slow.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after hydration finished")
	}
}

func TestRejoinWaitsForTeardownFlush(t *testing.T) {
	var mu sync.Mutex
	var steps []string
	record := func(step string) {
		mu.Lock()
		steps = append(steps, step)
		mu.Unlock()
	}

	closeGate := make(chan struct{})
	firstSession := true
	factory := func(roomID string, doc *Document, emit func(data []byte)) Engine {
		e := &gatedEngine{doc: doc, record: record}
		if firstSession {
			e.closeGate = closeGate
			firstSession = false
		}
		return e
	}
	hub := NewHub(nil, factory, 5*time.Second, logger.NewIsolatedLogger(t.TempDir()+"/hub.log"))
	go hub.Run()

	alice := newTestClient(hub, "workbook:w1", "alice")
	hub.register <- alice
	<-alice.Send

	// Last leave starts a teardown that stays parked on the gate.
	hub.unregister <- alice

	bob := newTestClient(hub, "workbook:w1", "bob")
	hub.register <- bob

	// Bob's session must not hydrate past the in-flight final flush.
	select {
	case <-bob.Send:
		t.Fatal("snapshot delivered before the previous teardown flush landed")
	case <-time.After(50 * time.Millisecond):
	}

	close(closeGate)
	select {
	case <-bob.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after teardown finished")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hydrate", "close", "hydrate"}, steps)
}

func TestRelayDropsOwnInstanceFrames(t *testing.T) {
	hub, _ := newTestHub(t)

	client := newTestClient(hub, "workbook:w1", "alice")
	hub.register <- client
	<-client.Send

	frame := json.RawMessage(`{"type":"update"}`)

	own, err := json.Marshal(relayPayload{Room: "workbook:w1", Origin: hub.instanceID, Message: frame})
	require.NoError(t, err)
	hub.relayFrame(own)
	assert.Len(t, client.Send, 0, "a frame relayed back to its publisher must not be delivered twice")

	other, err := json.Marshal(relayPayload{Room: "workbook:w1", Origin: "peer-instance", Message: frame})
	require.NoError(t, err)
	hub.relayFrame(other)
	assert.Len(t, client.Send, 1)
}
