package rubric

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forgelabs/planforge/internal/plan"
)

// Minimum topic-group coverage by skill level.
var minDepthBySkill = map[SkillLevel]int{
	SkillBeginner:     2,
	SkillIntermediate: 3,
	SkillAdvanced:     4,
}

// TechnicalDepth scores whether the plan touches enough engineering
// topics for the user's skill level, and whether the stack matches
// that level.
func TechnicalDepth(p *plan.Plan, skill SkillLevel) Score {
	card := newScorecard()

	var b strings.Builder
	p.EachStep(func(_ plan.Phase, st plan.Step) bool {
		b.WriteString(st.Title)
		b.WriteString(" ")
		b.WriteString(st.Description)
		b.WriteString(" ")
		return true
	})
	corpus := strings.ToLower(b.String())

	var present, missing []string
	for group, keywords := range depthGroups {
		if containsAny(corpus, keywords) {
			present = append(present, group)
		} else {
			missing = append(missing, group)
		}
	}
	sort.Strings(missing)

	minDepth, ok := minDepthBySkill[skill]
	if !ok {
		minDepth = minDepthBySkill[SkillIntermediate]
	}
	if len(present) < minDepth {
		points := 2
		if skill == SkillAdvanced {
			points = 3
		}
		card.penalize(points, fmt.Sprintf(
			"Covers %d of %d engineering topics (need %d for %s) - missing: %s",
			len(present), len(depthGroups), minDepth, skill, strings.Join(missing, ", ")))
	}

	names := p.Stack.Names()
	if skill == SkillBeginner {
		for _, name := range names {
			if containsAny(name, complexFrameworks) {
				card.penalize(2, fmt.Sprintf("Stack includes %q - too heavy for a beginner plan", name))
				break
			}
		}
	}
	if skill == SkillAdvanced && len(names) > 0 && allTrivial(names) {
		card.penalize(2, "Stack uses only entry-level tools - an advanced plan should stretch further")
	}

	clean := fmt.Sprintf("Good technical coverage: %d engineering topics represented", len(present))
	return card.finish(CriterionTechnicalDepth, TechnicalDepthThreshold, clean)
}

// allTrivial reports whether every stack name matches the trivial
// framework list.
func allTrivial(names []string) bool {
	for _, name := range names {
		if !containsAny(name, trivialFrameworks) {
			return false
		}
	}
	return true
}
