// Package quiz is the multiple-choice engine family.
package quiz

import (
	"encoding/json"
	"math/rand/v2"
	"strings"

	"github.com/playperu/minigames/internal/engine"
	"github.com/playperu/minigames/internal/minigame"
)

// Name identifies the family in routes and ENGINE_READY.
const Name = "quiz"

// Item is one content element. Options may arrive as a list or as a
// comma-separated string.
type Item struct {
	Question           string              `json:"question"`
	Options            minigame.StringList `json:"options"`
	CorrectOptionIndex *minigame.FlexInt   `json:"correctOptionIndex"`
}

// gradable reports whether the item has a question, at least two options and
// an answer key that points at one of them. Items that are not gradable are
// still played but never score.
func (it Item) gradable() bool {
	if strings.TrimSpace(it.Question) == "" || len(it.Options) < 2 || it.CorrectOptionIndex == nil {
		return false
	}
	i := int(*it.CorrectOptionIndex)
	return i >= 0 && i < len(it.Options)
}

// Family decodes multiple-choice content. Every item becomes a question.
type Family struct{}

func (Family) Name() string { return Name }

func (Family) Decode(items []json.RawMessage, _ minigame.Settings) []engine.Question {
	qs := make([]engine.Question, 0, len(items))
	for _, raw := range items {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			it = Item{}
		}
		qs = append(qs, question{item: it, gradable: it.gradable()})
	}
	return qs
}

type question struct {
	item     Item
	gradable bool
}

func (q question) NewRound(*rand.Rand) engine.Round {
	return &round{item: q.item, gradable: q.gradable}
}

type round struct {
	item     Item
	gradable bool
	selected *int
}

// RoundView is what the player sees. CorrectIndex is revealed only after a
// selection.
type RoundView struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Selected     *int     `json:"selected,omitempty"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
}

func (r *round) Act(a engine.Action) (*engine.Verdict, error) {
	if a.Kind != engine.ActionSelect {
		return nil, engine.ErrInvalidAction
	}
	if r.selected != nil {
		return nil, engine.ErrWrongPhase
	}
	// Without options there is nothing to range-check; any selection settles.
	if a.Index < 0 || (len(r.item.Options) > 0 && a.Index >= len(r.item.Options)) {
		return nil, engine.ErrInvalidAction
	}

	idx := a.Index
	r.selected = &idx
	return &engine.Verdict{
		Correct:       r.gradable && idx == int(*r.item.CorrectOptionIndex),
		SelectedIndex: &idx,
	}, nil
}

func (r *round) View() any {
	v := RoundView{
		Question: r.item.Question,
		Options:  r.item.Options,
		Selected: r.selected,
	}
	if r.selected != nil && r.gradable {
		correct := int(*r.item.CorrectOptionIndex)
		v.CorrectIndex = &correct
	}
	return v
}
