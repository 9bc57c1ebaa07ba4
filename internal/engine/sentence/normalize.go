package sentence

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// targetWords splits a sentence into words and strips its terminal
// punctuation.
func targetWords(sentence string) []string {
	words := strings.Fields(sentence)
	for len(words) > 0 {
		last := strings.TrimRightFunc(words[len(words)-1], unicode.IsPunct)
		if last != "" {
			words[len(words)-1] = last
			break
		}
		words = words[:len(words)-1]
	}
	return words
}

// normalize trims every word, drops empty ones and joins the rest with single
// spaces. The result is NFC-normalized and, when fold is set, case-folded.
func normalize(words []string, fold bool) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			kept = append(kept, w)
		}
	}
	s := norm.NFC.String(strings.Join(kept, " "))
	if fold {
		s = cases.Fold().String(s)
	}
	return s
}
