package engine

import (
	"time"

	"github.com/playperu/minigames/internal/minigame"
)

// Session is the mutable state of one play-through. It is owned by a single
// goroutine and never shared with the host.
type Session struct {
	Phase             Phase
	CreationID        string
	Settings          minigame.Settings
	Questions         []Question
	CurrentIndex      int
	Score             int
	Answers           []minigame.AnswerRecord
	QuestionStartedAt time.Time
	CountdownLeft     int
	Round             Round

	// token identifies the only timer allowed to fire; arming a new timer or
	// finishing the session invalidates older ones.
	token uint64
}

func NewSession() *Session {
	return &Session{Phase: AwaitingInit}
}

// Total is the number of questions that can be scored.
func (s *Session) Total() int { return len(s.Questions) }

// TotalTimeMs sums the answer deltas.
func (s *Session) TotalTimeMs() int64 {
	var total int64
	for _, a := range s.Answers {
		total += a.DeltaMs
	}
	return total
}

func (s *Session) View() minigame.ViewState {
	v := minigame.ViewState{
		Phase: s.Phase.String(),
		Index: s.CurrentIndex,
		Total: len(s.Questions),
		Score: s.Score,
	}
	if s.Phase == Countdown {
		v.Countdown = s.CountdownLeft
	}
	if s.Round != nil {
		v.Round = s.Round.View()
	}
	return v
}
