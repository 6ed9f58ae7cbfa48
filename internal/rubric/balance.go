package rubric

import (
	"fmt"

	"github.com/forgelabs/planforge/internal/plan"
)

// Balance thresholds. Phases that are too small feel trivial; phases
// that are too large feel overwhelming. Roughly 8-12 steps per phase
// gives good pacing over a 5-phase plan.
const (
	balanceExpectedPhases = 5
	minStepsPerPhase      = 3
	maxStepsPerPhase      = 15
	minTotalSteps         = 40
	maxTotalSteps         = 60
	maxStepCountVariance  = 16.0
)

// Balance scores how evenly work is distributed across phases.
func Balance(phases []plan.Phase) Score {
	if len(phases) == 0 {
		return Score{
			Criterion:     CriterionBalance,
			Score:         0,
			Feedback:      "No phases to evaluate",
			PassThreshold: BalanceThreshold,
		}
	}

	card := newScorecard()

	if len(phases) != balanceExpectedPhases {
		card.penalize(3, fmt.Sprintf("Expected %d phases but found %d", balanceExpectedPhases, len(phases)))
	}

	counts := make([]int, len(phases))
	total := 0
	for i, ph := range phases {
		counts[i] = len(ph.Steps)
		total += counts[i]
	}

	var sparse, overloaded []int
	for i, count := range counts {
		if count < minStepsPerPhase {
			sparse = append(sparse, i+1)
		}
		if count > maxStepsPerPhase {
			overloaded = append(overloaded, i+1)
		}
	}
	if len(sparse) > 0 {
		card.penalize(2, fmt.Sprintf("Phases %v have too few steps (< %d)", sparse, minStepsPerPhase))
	}
	if len(overloaded) > 0 {
		card.penalize(2, fmt.Sprintf("Phases %v are overloaded (> %d steps)", overloaded, maxStepsPerPhase))
	}

	avg := float64(total) / float64(len(phases))
	variance := 0.0
	for _, count := range counts {
		diff := float64(count) - avg
		variance += diff * diff
	}
	variance /= float64(len(phases))
	if variance > maxStepCountVariance {
		card.penalize(1, fmt.Sprintf("Uneven step distribution (counts: %v)", counts))
	}

	if total < minTotalSteps {
		card.penalize(1, fmt.Sprintf("Only %d total steps - plan may be underscoped", total))
	} else if total > maxTotalSteps {
		card.penalize(1, fmt.Sprintf("%d total steps - plan may be overscoped", total))
	}

	clean := fmt.Sprintf("Well-balanced: %d phases with %d steps (avg %.1f per phase)",
		len(phases), total, avg)
	return card.finish(CriterionBalance, BalanceThreshold, clean)
}
