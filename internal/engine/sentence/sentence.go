// Package sentence is the sentence-order engine family: the player rebuilds a
// sentence from a shuffled pool of its words mixed with distractors.
package sentence

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/playperu/minigames/internal/engine"
	"github.com/playperu/minigames/internal/minigame"
)

const Name = "sentence-order"

type Item struct {
	Sentence    string              `json:"sentence"`
	Distractors minigame.StringList `json:"distractors"`
}

// Family decodes sentence-order content. Every item becomes a question.
type Family struct{}

func (Family) Name() string { return Name }

func (Family) Decode(items []json.RawMessage, settings minigame.Settings) []engine.Question {
	fold := settings.FoldCase()
	qs := make([]engine.Question, 0, len(items))
	for _, raw := range items {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			it = Item{}
		}
		// A sentence without words is still a question; it never grades
		// correct.
		qs = append(qs, question{
			words:       targetWords(it.Sentence),
			distractors: it.Distractors,
			fold:        fold,
		})
	}
	return qs
}

type question struct {
	words       []string
	distractors []string
	fold        bool
}

func (q question) NewRound(rng *rand.Rand) engine.Round {
	pool := make([]Token, 0, len(q.words)+len(q.distractors))
	for _, w := range q.words {
		pool = append(pool, Token{ID: len(pool), Text: w})
	}
	for _, d := range q.distractors {
		pool = append(pool, Token{ID: len(pool), Text: d, distractor: true})
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	return &round{q: q, board: Board{Pool: pool, Selected: []Token{}}}
}

type round struct {
	q      question
	board  Board
	result *Result
}

// Result is revealed after submission.
type Result struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

// RoundView is the render state of a sentence round.
type RoundView struct {
	Board
	Result *Result `json:"result,omitempty"`
}

func (r *round) Act(a engine.Action) (*engine.Verdict, error) {
	if r.result != nil {
		return nil, engine.ErrWrongPhase
	}

	var err error
	switch a.Kind {
	case engine.ActionPick:
		r.board, err = r.board.Pick(a.Index)
	case engine.ActionUnpick:
		r.board, err = r.board.Unpick(a.Index)
	case engine.ActionSubmit:
		return r.submit()
	default:
		return nil, engine.ErrInvalidAction
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidAction, err)
	}
	return nil, nil
}

func (r *round) submit() (*engine.Verdict, error) {
	if len(r.board.Selected) == 0 && len(r.q.words) > 0 {
		return nil, engine.ErrEmptySubmission
	}
	selected := r.board.Words()
	correct := len(r.q.words) > 0 && Grade(r.q.words, selected, r.q.fold) && !r.board.HasDistractor()

	r.result = &Result{Correct: correct, Answer: strings.Join(r.q.words, " ")}
	return &engine.Verdict{Correct: correct, Selected: selected}, nil
}

func (r *round) View() any {
	return RoundView{Board: r.board, Result: r.result}
}

// Grade compares a submitted word sequence with the target words.
func Grade(target, submitted []string, fold bool) bool {
	return normalize(target, fold) == normalize(submitted, fold)
}
