package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/minigames/internal/minigame"
)

const quizCreation = `{
	"_id": "g1",
	"config": {
		"settings": {},
		"content": [{"question": "2+2?", "options": ["3", "4"], "correctOptionIndex": 1}]
	}
}`

func newTestServer(t *testing.T, broker Broker) *httptest.Server {
	t.Helper()
	srv := New(":0", slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Engines: testRegistry(),
		Broker:  broker,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialEngine(t *testing.T, ctx context.Context, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/play/" + name
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, payload string) {
	t.Helper()
	msg := minigame.Message{Type: typ, Payload: json.RawMessage(payload)}
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads engine messages until one matches, returning it with every
// message seen on the way.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(minigame.Message) bool) (minigame.Message, []minigame.Message) {
	t.Helper()
	var seen []minigame.Message
	for {
		var msg minigame.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("read: %v (seen %d messages)", err, len(seen))
		}
		seen = append(seen, msg)
		if match(msg) {
			return msg, seen
		}
	}
}

func ofType(typ string) func(minigame.Message) bool {
	return func(m minigame.Message) bool { return m.Type == typ }
}

func inPhase(phase string) func(minigame.Message) bool {
	return func(m minigame.Message) bool {
		if m.Type != minigame.TypeViewState {
			return false
		}
		var v minigame.ViewState
		return m.Decode(&v) == nil && v.Phase == phase
	}
}

func playQuiz(t *testing.T, ctx context.Context, conn *websocket.Conn, selected int) []minigame.Message {
	t.Helper()
	readUntil(t, ctx, conn, ofType(minigame.TypeEngineReady))

	send(t, ctx, conn, minigame.TypeInitGame, quizCreation)
	readUntil(t, ctx, conn, inPhase("ready"))

	send(t, ctx, conn, minigame.TypeUserEnter, `{}`)
	readUntil(t, ctx, conn, inPhase("playing"))

	send(t, ctx, conn, minigame.TypeUserSelect, `{"index": `+strconv.Itoa(selected)+`}`)
	_, seen := readUntil(t, ctx, conn, ofType(minigame.TypeGameComplete))
	return seen
}

func TestPlayQuizSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ts := newTestServer(t, nil)
	conn := dialEngine(t, ctx, ts, "quiz")

	// Frames that do not decode are dropped without ending the session.
	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	seen := playQuiz(t, ctx, conn, 1)

	var answer minigame.LiveAnswer
	var finish minigame.LiveFinish
	var complete minigame.GameComplete
	var order []string
	for _, msg := range seen {
		switch msg.Type {
		case minigame.TypeLiveAnswer:
			msg.Decode(&answer)
		case minigame.TypeLiveFinish:
			msg.Decode(&finish)
		case minigame.TypeGameComplete:
			msg.Decode(&complete)
		default:
			continue
		}
		order = append(order, msg.Type)
	}

	want := []string{minigame.TypeLiveAnswer, minigame.TypeLiveFinish, minigame.TypeGameComplete}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if !answer.Correct || answer.ScoreDelta != 1 || answer.CurrentScore != 1 {
		t.Errorf("live answer = %+v", answer)
	}
	if complete.GameCreationID != "g1" || complete.Score != 1 || complete.TotalPossibleScore != 1 {
		t.Errorf("game complete = %+v", complete)
	}
	if len(complete.Answers) != 1 || !complete.Answers[0].Correct {
		t.Fatalf("answers = %+v", complete.Answers)
	}
	if finish.TotalTimeMs != complete.Answers[0].DeltaMs {
		t.Errorf("totalTimeMs = %d, want %d", finish.TotalTimeMs, complete.Answers[0].DeltaMs)
	}
}

func TestPlayRejectsActionsOutOfPhase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ts := newTestServer(t, nil)
	conn := dialEngine(t, ctx, ts, "sentence-order")
	readUntil(t, ctx, conn, ofType(minigame.TypeEngineReady))

	send(t, ctx, conn, minigame.TypeUserRestart, `{}`)
	msg, _ := readUntil(t, ctx, conn, ofType(minigame.TypeActionRejected))

	var rej minigame.ActionRejected
	if err := msg.Decode(&rej); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rej.Action != minigame.TypeUserRestart || rej.Reason == "" {
		t.Errorf("rejection = %+v", rej)
	}
}

func TestPlayUnknownEngine(t *testing.T) {
	srv := New(":0", slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{Engines: testRegistry()})

	req := httptest.NewRequest(http.MethodGet, "/ws/play/chess", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "engine not found") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLiveEventsRelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ts := newTestServer(t, NewMemoryBroker())

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/live/g1/events", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	events := make(chan LiveEvent, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data: ")
			if !ok {
				continue
			}
			var ev LiveEvent
			if json.Unmarshal([]byte(data), &ev) == nil {
				events <- ev
			}
		}
	}()

	conn := dialEngine(t, ctx, ts, "quiz")
	playQuiz(t, ctx, conn, 0)

	var got []string
	for len(got) < 3 {
		select {
		case ev := <-events:
			if ev.CreationID != "g1" || ev.SessionID == "" {
				t.Errorf("event = %+v", ev)
			}
			got = append(got, ev.Type)
		case <-ctx.Done():
			t.Fatalf("relayed %v before timeout", got)
		}
	}

	want := []string{minigame.TypeLiveAnswer, minigame.TypeLiveFinish, minigame.TypeGameComplete}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("relayed %v, want %v", got, want)
	}
}
