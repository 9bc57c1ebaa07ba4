package sentence

import "fmt"

// Token is one word tile.
type Token struct {
	ID   int    `json:"id"`
	Text string `json:"text"`

	distractor bool
}

// Board is the word pool and the player's current selection. Moves return a
// new Board and leave the receiver unchanged.
type Board struct {
	Pool     []Token `json:"pool"`
	Selected []Token `json:"selected"`
}

// Pick moves the pool token at i to the end of the selection.
func (b Board) Pick(i int) (Board, error) {
	if i < 0 || i >= len(b.Pool) {
		return b, fmt.Errorf("pool index %d out of range [0,%d)", i, len(b.Pool))
	}
	return Board{
		Pool:     without(b.Pool, i),
		Selected: with(b.Selected, b.Pool[i]),
	}, nil
}

// Unpick moves the selected token at i back to the end of the pool.
func (b Board) Unpick(i int) (Board, error) {
	if i < 0 || i >= len(b.Selected) {
		return b, fmt.Errorf("selection index %d out of range [0,%d)", i, len(b.Selected))
	}
	return Board{
		Pool:     with(b.Pool, b.Selected[i]),
		Selected: without(b.Selected, i),
	}, nil
}

// Words returns the selected words in order.
func (b Board) Words() []string {
	words := make([]string, len(b.Selected))
	for i, t := range b.Selected {
		words[i] = t.Text
	}
	return words
}

// HasDistractor reports whether any selected token is a distractor.
func (b Board) HasDistractor() bool {
	for _, t := range b.Selected {
		if t.distractor {
			return true
		}
	}
	return false
}

func without(ts []Token, i int) []Token {
	out := make([]Token, 0, len(ts)-1)
	out = append(out, ts[:i]...)
	return append(out, ts[i+1:]...)
}

func with(ts []Token, t Token) []Token {
	out := make([]Token, 0, len(ts)+1)
	out = append(out, ts...)
	return append(out, t)
}
