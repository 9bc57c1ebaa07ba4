// Package engine runs the per-session lifecycle of an embedded mini-game:
//
//	AwaitingInit → Ready → Countdown → Playing(i) → AnswerReveal(i) → Playing(i+1) … → Done
//
// Transitions are methods on Machine over an explicitly owned *Session and
// return the messages to post and the timer to arm. Runner drives a Machine
// from a single goroutine. Engine families (multiple choice, sentence order)
// plug in through Family.
package engine

import (
	"encoding/json"
	"errors"
	"math/rand/v2"

	"github.com/playperu/minigames/internal/minigame"
)

var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrSingleAttempt      = errors.New("restart not allowed: one attempt per load")
	ErrWrongPhase         = errors.New("action not accepted in current phase")
	ErrInvalidAction      = errors.New("invalid action")
	ErrEmptySubmission    = errors.New("empty submission")
	ErrUnknownMessage     = errors.New("unknown message type")
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	AwaitingInit Phase = iota
	Ready
	Countdown
	Playing
	AnswerReveal
	Done
)

func (p Phase) String() string {
	switch p {
	case AwaitingInit:
		return "awaiting_init"
	case Ready:
		return "ready"
	case Countdown:
		return "countdown"
	case Playing:
		return "playing"
	case AnswerReveal:
		return "answer_reveal"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// ActionKind names the player input an Action carries.
type ActionKind int

const (
	ActionSelect ActionKind = iota
	ActionPick
	ActionUnpick
	ActionSubmit
)

// Action is one player input while a question is on screen.
type Action struct {
	Kind  ActionKind
	Index int
}

// Verdict settles a question.
type Verdict struct {
	Correct       bool
	SelectedIndex *int
	Selected      []string
}

// Round is the player's interaction with the question on screen.
type Round interface {
	// Act applies a player action. It returns a non-nil Verdict once the
	// action settles the question, and nil for intermediate moves.
	Act(a Action) (*Verdict, error)
	// View returns the render state of the round.
	View() any
}

// Question is one decoded content item. It is read-only.
type Question interface {
	NewRound(rng *rand.Rand) Round
}

// Family decodes the content of one engine kind.
type Family interface {
	// Name is the engine name used in routes and ENGINE_READY.
	Name() string
	// Decode turns raw content items into questions. Items that do not
	// decode are skipped.
	Decode(items []json.RawMessage, settings minigame.Settings) []Question
}
