package evaluation

import (
	"fmt"
	"strings"

	"github.com/forgelabs/planforge/internal/plan"
)

// Guidance shorter than this (trimmed) cannot carry an autonomous
// implementation; such steps are blocking, not advisory.
const minStepGuidanceChars = 30

// More ambiguous steps than this collapses into one aggregated
// critical issue instead of per-step suggestions.
const maxAmbiguousSuggestions = 5

// Steps-per-phase spread beyond this gap reads as uneven pacing.
const maxPhaseSizeGap = 6

// ambiguousPhrases require a human decision and therefore break
// autonomous execution.
var ambiguousPhrases = []string{
	"if needed", "consider", "optionally", "you may", "if desired",
	"feel free to", "think about", "research", "look into",
}

// resilienceKeywords mark error-handling work.
var resilienceKeywords = []string{"error", "exception", "logging", "retry"}

// runHeuristics applies the supplementary step-level checks, appending
// directly to the critical/suggestion buckets.
func runHeuristics(p *plan.Plan, critical *[]string, suggestions *[]string) {
	checkPhaseShape(p, suggestions)
	checkAmbiguousLanguage(p, critical, suggestions)
	checkGuidancePresence(p, critical)
	checkCoverageGaps(p, suggestions)
}

// checkPhaseShape flags duplicate phase names and a wide
// steps-per-phase spread.
func checkPhaseShape(p *plan.Plan, suggestions *[]string) {
	names := make(map[string]bool, len(p.Phases))
	duplicate := false
	for _, ph := range p.Phases {
		key := strings.ToLower(strings.TrimSpace(ph.Name))
		if names[key] {
			duplicate = true
		}
		names[key] = true
	}
	if duplicate {
		*suggestions = append(*suggestions,
			"Duplicate phase names detected; rename phases for clarity.")
	}

	minSteps, maxSteps := -1, -1
	for _, ph := range p.Phases {
		n := len(ph.Steps)
		if n == 0 {
			continue
		}
		if minSteps == -1 || n < minSteps {
			minSteps = n
		}
		if n > maxSteps {
			maxSteps = n
		}
	}
	if minSteps != -1 && maxSteps-minSteps > maxPhaseSizeGap {
		*suggestions = append(*suggestions,
			"Phase sizes vary widely; consider redistributing work for steadier pacing.")
	}
}

// checkAmbiguousLanguage scans step titles and descriptions for
// phrases that would force a mid-run clarification. A handful of
// matches become per-step suggestions; widespread ambiguity becomes
// one blocking issue.
func checkAmbiguousLanguage(p *plan.Plan, critical *[]string, suggestions *[]string) {
	var flagged []string
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		text := strings.ToLower(st.Title + " " + st.Description)
		var found []string
		for _, phrase := range ambiguousPhrases {
			if strings.Contains(text, phrase) {
				found = append(found, phrase)
			}
		}
		if len(found) > 0 {
			flagged = append(flagged, fmt.Sprintf(
				"Step %d contains ambiguous language: %s", st.Index, strings.Join(found, ", ")))
		}
		return true
	})

	if len(flagged) == 0 {
		return
	}
	if len(flagged) > maxAmbiguousSuggestions {
		*critical = append(*critical, fmt.Sprintf(
			"Multiple steps (%d) contain ambiguous language that requires clarification. "+
				"For autonomous execution, steps must be decisive and specific.", len(flagged)))
		return
	}
	for _, f := range flagged {
		*suggestions = append(*suggestions, "Autonomous execution concern: "+f)
	}
}

// checkGuidancePresence requires every step to carry self-sufficient
// guidance; a step needing external clarification blocks approval.
func checkGuidancePresence(p *plan.Plan, critical *[]string) {
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		if len(strings.TrimSpace(st.Guidance)) < minStepGuidanceChars {
			*critical = append(*critical, fmt.Sprintf(
				"Step %d lacks comprehensive implementation guidance (guidance too brief or missing)", st.Index))
		}
		return true
	})
}

// checkCoverageGaps flags plans with no testing work and no
// resilience work anywhere.
func checkCoverageGaps(p *plan.Plan, suggestions *[]string) {
	if p.TotalSteps() == 0 {
		return
	}

	hasTest, hasResilience := false, false
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		text := strings.ToLower(st.Title + " " + st.Description + " " + st.Guidance)
		if strings.Contains(text, "test") {
			hasTest = true
		}
		if containsAnyKeyword(text, resilienceKeywords) {
			hasResilience = true
		}
		return !(hasTest && hasResilience)
	})

	if !hasTest {
		*suggestions = append(*suggestions,
			"Add a dedicated testing/validation step so the plan closes with verification.")
	}
	if !hasResilience {
		*suggestions = append(*suggestions,
			"No step mentions error handling or logging; add explicit resilience work.")
	}
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
