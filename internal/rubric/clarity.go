package rubric

import (
	"fmt"
	"strings"
	"unicode"
)

// Clarity scores how clearly the project concept is explained.
//
// Penalties:
//   - fewer than 10 words: -3 (too brief)
//   - more than 200 words: -2 (too verbose)
//   - more than 2 distinct vague words present: -2
//   - no uppercase character at all, a proxy for "no named
//     technology or proper noun": -1
func Clarity(text string) Score {
	card := newScorecard()

	words := len(strings.Fields(text))
	if words < 10 {
		card.penalize(3, "Concept is too brief - needs more detail")
	} else if words > 200 {
		card.penalize(2, "Concept is quite verbose - could be more concise")
	}

	if n := countPresent(text, vagueWords); n > 2 {
		card.penalize(2, fmt.Sprintf("Contains %d vague terms - be more specific", n))
	}

	if !strings.ContainsFunc(text, unicode.IsUpper) {
		card.penalize(1, "Could mention specific technologies or frameworks")
	}

	return card.finish(CriterionClarity, ClarityThreshold,
		"Concept is clear and well-articulated")
}
