package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/playperu/minigames/internal/minigame"
)

// LiveEvent is an engine telemetry message relayed to live leaderboards.
type LiveEvent struct {
	Type       string          `json:"type"`
	CreationID string          `json:"creationId"`
	SessionID  string          `json:"sessionId"`
	Payload    json.RawMessage `json:"payload"`
}

// relayed lists the engine messages copied to the live relay.
var relayed = map[string]bool{
	minigame.TypeLiveAnswer:   true,
	minigame.TypeLiveFinish:   true,
	minigame.TypeGameComplete: true,
}

// Broker fans live events out to subscribers of a creation. Delivery is best
// effort: slow subscribers miss events.
type Broker interface {
	Publish(ctx context.Context, creationID string, event LiveEvent) error
	// Subscribe returns JSON-encoded events for creationID and a function
	// that ends the subscription.
	Subscribe(ctx context.Context, creationID string) (<-chan []byte, func(), error)
}

// MemoryBroker is an in-process pub/sub keyed by creation ID.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

func (b *MemoryBroker) Subscribe(_ context.Context, creationID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[creationID] == nil {
		b.subs[creationID] = make(map[chan []byte]struct{})
	}
	b.subs[creationID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() { once.Do(func() { b.unsubscribe(creationID, ch) }) }, nil
}

func (b *MemoryBroker) unsubscribe(creationID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[creationID], ch)
	if len(b.subs[creationID]) == 0 {
		delete(b.subs, creationID)
	}
	b.mu.Unlock()
}

func (b *MemoryBroker) Publish(_ context.Context, creationID string, event LiveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	b.mu.RLock()
	for ch := range b.subs[creationID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
	return nil
}

// liveTap is a minigame.Sender that copies relayed engine messages of one
// session to the broker. The creation ID is taken from the session's first
// INIT_GAME.
type liveTap struct {
	broker    Broker
	sessionID string

	mu         sync.Mutex
	creationID string
	seen       bool
}

// observe records the creation ID of the first INIT_GAME. It reports whether
// msg was the one recorded.
func (t *liveTap) observe(msg minigame.Message) bool {
	if msg.Type != minigame.TypeInitGame {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen {
		return false
	}
	t.seen = true

	var c minigame.GameCreation
	if msg.Decode(&c) == nil {
		t.creationID = c.ID
	}
	return true
}

// release forgets a recorded INIT_GAME that never reached the engine.
func (t *liveTap) release() {
	t.mu.Lock()
	t.seen = false
	t.creationID = ""
	t.mu.Unlock()
}

func (t *liveTap) Send(ctx context.Context, msg minigame.Message) error {
	if !relayed[msg.Type] {
		return nil
	}
	t.mu.Lock()
	creationID := t.creationID
	t.mu.Unlock()
	if creationID == "" {
		return nil
	}
	return t.broker.Publish(ctx, creationID, LiveEvent{
		Type:       msg.Type,
		CreationID: creationID,
		SessionID:  t.sessionID,
		Payload:    msg.Payload,
	})
}
