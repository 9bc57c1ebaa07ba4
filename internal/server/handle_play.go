package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/minigames/internal/engine"
	"github.com/playperu/minigames/internal/minigame"
)

const wsWriteTimeout = 5 * time.Second

// PlayOptions configures the play websocket.
type PlayOptions struct {
	// OriginPatterns restricts the host origins. Empty accepts any origin.
	OriginPatterns []string
	SessionTimeout time.Duration
}

func (o PlayOptions) acceptOptions() *websocket.AcceptOptions {
	if len(o.OriginPatterns) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: o.OriginPatterns}
}

// wsSender writes envelopes to the host as JSON text frames.
type wsSender struct {
	conn *websocket.Conn
}

func (s wsSender) Send(ctx context.Context, msg minigame.Message) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, s.conn, msg)
}

// handlePlay runs one engine session per websocket connection. The socket
// carries the same envelopes as the iframe message channel.
func handlePlay(logger *slog.Logger, engines *Registry, broker Broker, opts PlayOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := engineFrom(r)

		conn, err := websocket.Accept(w, r, opts.acceptOptions())
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		sessionID := uuid.NewString()
		log := logger.With("session_id", sessionID, "engine", spec.Family.Name())

		ctx := r.Context()
		if opts.SessionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.SessionTimeout)
			defer cancel()
		}

		tap := &liveTap{broker: broker, sessionID: sessionID}
		runner := engine.NewRunner(
			engines.NewMachine(spec),
			minigame.Senders{wsSender{conn: conn}, tap},
			log,
		)

		log.Info("session opened")
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return runner.Run(gctx) })
		g.Go(func() error { return readHost(gctx, conn, runner, tap, log) })

		err = g.Wait()
		select {
		case <-runner.Finished():
		default:
			log.Info("session abandoned", "error", err)
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

// errHostClosed ends a session when the host closes the socket.
var errHostClosed = errors.New("host closed connection")

// readHost forwards host frames to the runner until the socket closes.
func readHost(ctx context.Context, conn *websocket.Conn, runner *engine.Runner, tap *liveTap, log *slog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return errHostClosed
			}
			return fmt.Errorf("reading host frame: %w", err)
		}
		if typ != websocket.MessageText {
			log.Debug("dropping binary frame")
			continue
		}

		var msg minigame.Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			log.Debug("dropping undecodable frame", "error", err)
			continue
		}

		if !deliver(runner, tap, msg) {
			log.Warn("session inbox full, dropping message", "type", msg.Type)
		}
	}
}

// deliver queues msg for the runner. The tap learns the creation before the
// runner can emit anything for it, and forgets it again if the message is
// dropped.
func deliver(runner *engine.Runner, tap *liveTap, msg minigame.Message) bool {
	claimed := tap.observe(msg)
	if runner.Deliver(msg) {
		return true
	}
	if claimed {
		tap.release()
	}
	return false
}
