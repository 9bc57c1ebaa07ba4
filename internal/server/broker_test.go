package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/minigames/internal/engine"
	"github.com/playperu/minigames/internal/minigame"
)

func TestMemoryBroker(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	ch, unsubscribe, err := b.Subscribe(ctx, "g1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	other, unsubscribeOther, _ := b.Subscribe(ctx, "g2")
	defer unsubscribeOther()

	b.Publish(ctx, "g1", LiveEvent{Type: minigame.TypeLiveAnswer, CreationID: "g1"})

	select {
	case data := <-ch:
		var ev LiveEvent
		json.Unmarshal(data, &ev)
		if ev.Type != minigame.TypeLiveAnswer || ev.CreationID != "g1" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	select {
	case data := <-other:
		t.Errorf("g2 subscriber got %s", data)
	default:
	}

	unsubscribe()
	unsubscribe()
	b.Publish(ctx, "g1", LiveEvent{Type: minigame.TypeLiveFinish})
	select {
	case data := <-ch:
		t.Errorf("event after unsubscribe: %s", data)
	default:
	}
	if _, ok := b.subs["g1"]; ok {
		t.Error("empty subscriber set not removed")
	}
}

func TestMemoryBrokerDropsForSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	ch, unsubscribe, _ := b.Subscribe(ctx, "g1")
	defer unsubscribe()

	for range cap(ch) + 5 {
		b.Publish(ctx, "g1", LiveEvent{Type: minigame.TypeLiveAnswer})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered %d events, want %d", len(ch), cap(ch))
	}
}

func TestLiveTap(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	ch, unsubscribe, _ := b.Subscribe(ctx, "g1")
	defer unsubscribe()

	tap := &liveTap{broker: b, sessionID: "s1"}
	answer := minigame.MustMessage(minigame.TypeLiveAnswer, minigame.LiveAnswer{Correct: true})

	// Nothing is relayed before the creation is known.
	tap.Send(ctx, answer)

	tap.observe(minigame.MustMessage(minigame.TypeInitGame, minigame.GameCreation{ID: "g1"}))
	tap.observe(minigame.MustMessage(minigame.TypeInitGame, minigame.GameCreation{ID: "g2"}))

	tap.Send(ctx, minigame.MustMessage(minigame.TypeViewState, minigame.ViewState{}))
	tap.Send(ctx, answer)

	if len(ch) != 1 {
		t.Fatalf("relayed %d events, want 1", len(ch))
	}
	var ev LiveEvent
	json.Unmarshal(<-ch, &ev)
	if ev.SessionID != "s1" || ev.CreationID != "g1" || ev.Type != minigame.TypeLiveAnswer {
		t.Errorf("event = %+v", ev)
	}
}

func TestDeliverDroppedInitIsNotRelayed(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	ch, unsubscribe, _ := b.Subscribe(ctx, "g1")
	defer unsubscribe()

	spec, _ := testRegistry().Get("quiz")
	runner := engine.NewRunner(testRegistry().NewMachine(spec), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tap := &liveTap{broker: b, sessionID: "s1"}

	// Fill the inbox of a runner that is not running yet.
	for runner.Deliver(minigame.MustMessage(minigame.TypeUserEnter, nil)) {
	}

	if deliver(runner, tap, minigame.MustMessage(minigame.TypeInitGame, minigame.GameCreation{ID: "g1"})) {
		t.Fatal("delivered into a full inbox")
	}
	tap.Send(ctx, minigame.MustMessage(minigame.TypeLiveFinish, minigame.LiveFinish{}))
	if len(ch) != 0 {
		t.Fatalf("relayed %d events for a dropped INIT_GAME", len(ch))
	}

	// A later INIT_GAME that is accepted keys the relay.
	fresh := engine.NewRunner(testRegistry().NewMachine(spec), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !deliver(fresh, tap, minigame.MustMessage(minigame.TypeInitGame, minigame.GameCreation{ID: "g1"})) {
		t.Fatal("init not delivered")
	}
	tap.Send(ctx, minigame.MustMessage(minigame.TypeLiveFinish, minigame.LiveFinish{}))
	if len(ch) != 1 {
		t.Errorf("relayed %d events, want 1", len(ch))
	}
}
