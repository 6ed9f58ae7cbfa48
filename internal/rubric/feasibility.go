package rubric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forgelabs/planforge/internal/plan"
)

// scopeExpectation defines what a project type should look like.
type scopeExpectation struct {
	minSteps    int
	maxSteps    int
	idealPhases int
	maxWeeks    int
}

var scopeByType = map[ProjectType]scopeExpectation{
	ProjectToy:       {minSteps: 15, maxSteps: 30, idealPhases: 3, maxWeeks: 1},
	ProjectMedium:    {minSteps: 30, maxSteps: 60, idealPhases: 5, maxWeeks: 2},
	ProjectAmbitious: {minSteps: 50, maxSteps: 90, idealPhases: 6, maxWeeks: 4},
}

// weekPattern matches the leading digit count before the word "week",
// so "2 weeks" and "1-2 weeks" both parse (the latter to 1).
var weekPattern = regexp.MustCompile(`(\d+)\s*(?:-\s*\d+\s*)?week`)

// FeasibilityForType scores whether the plan's scope fits the declared
// project type and the available time.
func FeasibilityForType(p *plan.Plan, projectType ProjectType, timeConstraint string) Score {
	scope, ok := scopeByType[projectType]
	if !ok {
		scope = scopeByType[ProjectMedium]
	}

	card := newScorecard()
	total := p.TotalSteps()

	if total < scope.minSteps {
		card.penalize(3, fmt.Sprintf("Only %d steps - a %s project needs at least %d", total, projectType, scope.minSteps))
	} else if total > scope.maxSteps {
		card.penalize(2, fmt.Sprintf("%d steps - a %s project should stay under %d", total, projectType, scope.maxSteps))
	}

	phaseGap := len(p.Phases) - scope.idealPhases
	if phaseGap < 0 {
		phaseGap = -phaseGap
	}
	if phaseGap > 1 {
		card.penalize(1, fmt.Sprintf("%d phases - a %s project reads best around %d", len(p.Phases), projectType, scope.idealPhases))
	}

	if weeks, parsed := ParseWeeks(timeConstraint); parsed && weeks < scope.maxWeeks {
		card.penalize(2, fmt.Sprintf("Timeline of %d week(s) is tight for a %s project (plan assumes up to %d)", weeks, projectType, scope.maxWeeks))
	}

	if projectType == ProjectToy {
		if n := countStepsMentioning(p, deploymentKeywords); n > 2 {
			card.penalize(1, fmt.Sprintf("%d steps cover deployment/production work - heavy for a toy project", n))
		}
	}
	if projectType == ProjectAmbitious {
		if n := countStepsMentioning(p, ambitiousKeywords); n < 5 {
			card.penalize(2, fmt.Sprintf("Only %d steps cover advanced/production work - an ambitious plan needs more", n))
		}
	}

	clean := fmt.Sprintf("Scope fits a %s project: %d steps across %d phases", projectType, total, len(p.Phases))
	return card.finish(CriterionFeasibility, FeasibilityThreshold, clean)
}

// ParseWeeks extracts the available week count from a free-text time
// constraint. Returns false when no week count is present, in which
// case the time penalty is skipped.
func ParseWeeks(timeConstraint string) (int, bool) {
	m := weekPattern.FindStringSubmatch(strings.ToLower(timeConstraint))
	if m == nil {
		return 0, false
	}
	weeks, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return weeks, true
}

// countStepsMentioning counts steps whose title or description contains
// any of the keywords.
func countStepsMentioning(p *plan.Plan, keywords []string) int {
	n := 0
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		if containsAny(st.Title+" "+st.Description, keywords) {
			n++
		}
		return true
	})
	return n
}
