package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/playperu/minigames/internal/minigame"
)

const inboxSize = 64

// Runner drives one session from a single goroutine. Host messages and
// timer expiries are serialized through one select loop, so transitions never
// interleave.
type Runner struct {
	machine *Machine
	session *Session
	out     minigame.Sender
	logger  *slog.Logger

	inbox    chan minigame.Message
	fired    chan Timer
	stopped  chan struct{}
	finished chan struct{}
	pending  *time.Timer
}

// NewRunner returns a Runner that posts engine messages to out.
func NewRunner(m *Machine, out minigame.Sender, logger *slog.Logger) *Runner {
	return &Runner{
		machine:  m,
		session:  NewSession(),
		out:      out,
		logger:   logger,
		inbox:    make(chan minigame.Message, inboxSize),
		fired:    make(chan Timer, 1),
		stopped:  make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Deliver queues a host message. It may be called before Run starts; queued
// messages (typically an early INIT_GAME) are handled once Run attaches. It
// reports false when the inbox is full and the message was dropped.
func (r *Runner) Deliver(msg minigame.Message) bool {
	select {
	case r.inbox <- msg:
		return true
	default:
		return false
	}
}

// Finished is closed when the session reaches Done.
func (r *Runner) Finished() <-chan struct{} { return r.finished }

// Run processes events until ctx is cancelled. Pending timers are discarded
// on return.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		close(r.stopped)
		if r.pending != nil {
			r.pending.Stop()
		}
	}()

	r.post(ctx, minigame.MustMessage(minigame.TypeEngineReady, minigame.EngineReady{
		Engine: r.machine.Family.Name(),
	}))

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-r.inbox:
			out, err := r.machine.Dispatch(r.session, msg)
			if err != nil {
				r.logger.Debug("action rejected", "type", msg.Type, "phase", r.session.Phase.String(), "error", err)
				r.post(ctx, minigame.MustMessage(minigame.TypeActionRejected, minigame.ActionRejected{
					Action: msg.Type,
					Reason: err.Error(),
				}))
				continue
			}
			if msg.Type == minigame.TypeInitGame {
				r.logger.Info("session initialized",
					"creation_id", r.session.CreationID,
					"questions", r.session.Total(),
				)
			}
			r.apply(ctx, out)

		case t := <-r.fired:
			out, ok := r.machine.Fire(r.session, t)
			if !ok {
				continue
			}
			r.apply(ctx, out)
		}
	}
}

func (r *Runner) apply(ctx context.Context, out Output) {
	for _, msg := range out.Messages {
		r.post(ctx, msg)
	}
	if out.Timer != nil {
		r.arm(*out.Timer)
	}
	r.post(ctx, minigame.MustMessage(minigame.TypeViewState, r.session.View()))

	if r.session.Phase == Done {
		select {
		case <-r.finished:
		default:
			close(r.finished)
			r.logger.Info("session finished",
				"creation_id", r.session.CreationID,
				"score", r.session.Score,
				"total", r.session.Total(),
				"total_time_ms", r.session.TotalTimeMs(),
			)
		}
	}
}

func (r *Runner) arm(t Timer) {
	if r.pending != nil {
		r.pending.Stop()
	}
	r.pending = time.AfterFunc(t.After, func() {
		select {
		case r.fired <- t:
		case <-r.stopped:
		}
	})
}

func (r *Runner) post(ctx context.Context, msg minigame.Message) {
	minigame.Post(ctx, r.out, msg)
}
