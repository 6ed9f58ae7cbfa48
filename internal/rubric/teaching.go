package rubric

import (
	"fmt"
	"strings"

	"github.com/forgelabs/planforge/internal/plan"
)

// Guidance shorter than this (trimmed) does not count as real teaching
// content.
const minGuidanceChars = 20

// TeachingClarity scores how well the plan teaches: per-step guidance
// coverage, global notes depth, and a learning arc that starts with
// foundations and ends with advanced work.
func TeachingClarity(p *plan.Plan, skill SkillLevel) Score {
	card := newScorecard()

	total := p.TotalSteps()
	covered := 0
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		if len(strings.TrimSpace(st.Guidance)) > minGuidanceChars {
			covered++
		}
		return true
	})

	coverage := 0.0
	if total > 0 {
		coverage = float64(covered) / float64(total)
	}

	switch {
	case coverage < 0.5:
		card.penalize(3, fmt.Sprintf("Only %d/%d steps carry real implementation guidance", covered, total))
	case coverage < 0.8:
		card.penalize(1, fmt.Sprintf("Guidance coverage is %d/%d steps - aim for most steps", covered, total))
	}

	notes := len(strings.TrimSpace(p.Notes))
	switch {
	case notes < 200:
		card.penalize(2, "Global teaching notes are missing or too brief")
	case notes < 500:
		card.penalize(1, "Global teaching notes could go deeper on the learning arc")
	}

	if !phaseNamesContain(p.Phases, true, foundationKeywords) {
		card.penalize(1, "Early phases don't read like foundations - name the groundwork explicitly")
	}
	if skill != SkillBeginner && !phaseNamesContain(p.Phases, false, advancedKeywords) {
		card.penalize(1, "Late phases don't build toward advanced work")
	}

	if skill == SkillBeginner && coverage < 0.9 {
		card.penalize(1, "Beginner plans need guidance on nearly every step")
	}

	clean := fmt.Sprintf("Strong teaching arc: %d/%d steps annotated", covered, total)
	return card.finish(CriterionTeachingValue, TeachingValueThreshold, clean)
}

// phaseNamesContain checks the first two (head) or last two (tail)
// phase names for any of the keywords.
func phaseNamesContain(phases []plan.Phase, head bool, keywords []string) bool {
	if len(phases) == 0 {
		return false
	}
	window := phases[:min(2, len(phases))]
	if !head {
		window = phases[max(0, len(phases)-2):]
	}
	for _, ph := range window {
		if containsAny(ph.Name, keywords) {
			return true
		}
	}
	return false
}
