package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/playperu/minigames/internal/minigame"
)

// TimerKind tells Fire whether a countdown tick or a reveal pause expired.
type TimerKind int

const (
	TimerTick TimerKind = iota
	TimerReveal
)

// Timer asks the driver to call Machine.Fire with this value after After.
type Timer struct {
	Kind  TimerKind
	Token uint64
	After time.Duration
}

// Output is the effect of a transition.
type Output struct {
	Messages []minigame.Message
	Timer    *Timer
}

// Machine holds the transition functions of one engine family. A Machine is
// not safe for concurrent use; give each session its own.
type Machine struct {
	Family            Family
	Clock             minigame.Clock
	CountdownTicks    int
	CountdownInterval time.Duration
	RevealDelay       time.Duration
	Rand              *rand.Rand
}

func (m *Machine) now() time.Time {
	if m.Clock == nil {
		return minigame.WallClock()
	}
	return m.Clock()
}

func (m *Machine) rng() *rand.Rand {
	if m.Rand == nil {
		m.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m.Rand
}

// Dispatch routes an inbound host message to its transition.
func (m *Machine) Dispatch(s *Session, msg minigame.Message) (Output, error) {
	switch msg.Type {
	case minigame.TypeInitGame:
		return m.Init(s, msg)
	case minigame.TypeUserEnter:
		return m.Enter(s)
	case minigame.TypeUserRestart:
		return Output{}, m.Restart(s)
	case minigame.TypeUserSelect, minigame.TypeUserPick, minigame.TypeUserUnpick:
		var p minigame.UserAction
		if err := msg.Decode(&p); err != nil {
			return Output{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
		}
		return m.Act(s, Action{Kind: actionKinds[msg.Type], Index: p.Index})
	case minigame.TypeUserSubmit:
		return m.Act(s, Action{Kind: ActionSubmit})
	default:
		return Output{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

var actionKinds = map[string]ActionKind{
	minigame.TypeUserSelect: ActionSelect,
	minigame.TypeUserPick:   ActionPick,
	minigame.TypeUserUnpick: ActionUnpick,
}

// Init starts the session from an INIT_GAME message. A payload without
// usable content ends the session immediately with a zero score.
func (m *Machine) Init(s *Session, msg minigame.Message) (Output, error) {
	if s.Phase != AwaitingInit {
		return Output{}, ErrAlreadyInitialized
	}

	var c minigame.GameCreation
	if err := msg.Decode(&c); err != nil {
		c = minigame.GameCreation{}
	}

	s.CreationID = c.ID
	s.Settings = c.Settings()
	s.Questions = m.Family.Decode(c.Items(), s.Settings)
	s.CurrentIndex = 0
	s.Score = 0
	s.Answers = []minigame.AnswerRecord{}
	s.Round = nil

	if len(s.Questions) == 0 {
		return m.finish(s), nil
	}
	s.Phase = Ready
	return Output{}, nil
}

// Enter handles the player's explicit start.
func (m *Machine) Enter(s *Session) (Output, error) {
	if s.Phase != Ready {
		return Output{}, ErrWrongPhase
	}
	if m.CountdownTicks <= 0 {
		return m.present(s), nil
	}
	s.Phase = Countdown
	s.CountdownLeft = m.CountdownTicks
	return Output{Timer: m.arm(s, TimerTick, m.CountdownInterval)}, nil
}

// Restart is always rejected: a reload of the engine is the only way to play
// again.
func (m *Machine) Restart(*Session) error {
	return ErrSingleAttempt
}

// Fire handles an expired timer. It reports false, with no output, when the
// timer is stale or the session is already done.
func (m *Machine) Fire(s *Session, t Timer) (Output, bool) {
	if s.Phase == Done || t.Token != s.token {
		return Output{}, false
	}

	switch {
	case t.Kind == TimerTick && s.Phase == Countdown:
		s.CountdownLeft--
		if s.CountdownLeft > 0 {
			return Output{Timer: m.arm(s, TimerTick, m.CountdownInterval)}, true
		}
		return m.present(s), true

	case t.Kind == TimerReveal && s.Phase == AnswerReveal:
		s.CurrentIndex++
		s.Round = nil
		if s.CurrentIndex >= len(s.Questions) {
			return m.finish(s), true
		}
		return m.present(s), true
	}
	return Output{}, false
}

// Act applies a player action to the question on screen.
func (m *Machine) Act(s *Session, a Action) (Output, error) {
	if s.Phase != Playing || s.Round == nil {
		return Output{}, ErrWrongPhase
	}

	v, err := s.Round.Act(a)
	if err != nil {
		return Output{}, err
	}
	if v == nil {
		return Output{}, nil
	}

	rec := minigame.AnswerRecord{
		Index:         s.CurrentIndex,
		SelectedIndex: v.SelectedIndex,
		Selected:      v.Selected,
		Correct:       v.Correct,
		DeltaMs:       minigame.ElapsedMs(s.QuestionStartedAt, m.now()),
	}
	s.Answers = append(s.Answers, rec)

	scoreDelta := 0
	if rec.Correct {
		scoreDelta = 1
	}
	s.Score += scoreDelta
	s.Phase = AnswerReveal

	return Output{
		Messages: []minigame.Message{
			minigame.MustMessage(minigame.TypeLiveAnswer, minigame.LiveAnswer{
				Correct:      rec.Correct,
				DeltaMs:      rec.DeltaMs,
				ScoreDelta:   scoreDelta,
				CurrentScore: s.Score,
			}),
		},
		Timer: m.arm(s, TimerReveal, m.RevealDelay),
	}, nil
}

func (m *Machine) present(s *Session) Output {
	s.Phase = Playing
	s.CountdownLeft = 0
	s.Round = s.Questions[s.CurrentIndex].NewRound(m.rng())
	s.QuestionStartedAt = m.now()
	s.token++
	return Output{}
}

func (m *Machine) finish(s *Session) Output {
	s.Phase = Done
	s.Round = nil
	s.token++

	answers := make([]minigame.AnswerRecord, len(s.Answers))
	copy(answers, s.Answers)

	return Output{
		Messages: []minigame.Message{
			minigame.MustMessage(minigame.TypeLiveFinish, minigame.LiveFinish{
				TotalTimeMs: s.TotalTimeMs(),
			}),
			minigame.MustMessage(minigame.TypeGameComplete, minigame.GameComplete{
				GameCreationID:     s.CreationID,
				Score:              s.Score,
				TotalPossibleScore: len(s.Questions),
				Answers:            answers,
			}),
		},
	}
}

func (m *Machine) arm(s *Session, kind TimerKind, after time.Duration) *Timer {
	s.token++
	return &Timer{Kind: kind, Token: s.token, After: after}
}
