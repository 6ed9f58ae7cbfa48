package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgelabs/planforge/internal/plan"
)

const stepGuidance = "Work through this step by implementing the smallest version first, then extend it."

// teachingPlan builds a five-phase plan whose steps all carry guidance
// and whose phase names trace a foundations-to-advanced arc.
func teachingPlan() *plan.Plan {
	names := []string{
		"Foundation and Setup",
		"Core Data Model",
		"Feature Build-out",
		"Integration and Testing",
		"Polish and Deployment",
	}
	p := &plan.Plan{
		Notes: strings.Repeat("Each phase builds on the previous one and revisits earlier concepts at greater depth. ", 6),
	}
	idx := 1
	for i, name := range names {
		ph := plan.Phase{Index: i + 1, Name: name}
		for j := 0; j < 4; j++ {
			ph.Steps = append(ph.Steps, plan.Step{Index: idx, Guidance: stepGuidance})
			idx++
		}
		p.Phases = append(p.Phases, ph)
	}
	return p
}

func TestTeachingClarityFullMarks(t *testing.T) {
	s := TeachingClarity(teachingPlan(), SkillIntermediate)

	assert.Equal(t, CriterionTeachingValue, s.Criterion)
	assert.Equal(t, 10, s.Score)
	assert.Equal(t, "Strong teaching arc: 20/20 steps annotated", s.Feedback)
}

func TestTeachingClarityGuidanceCoverage(t *testing.T) {
	t.Run("low coverage is heavily penalized", func(t *testing.T) {
		p := teachingPlan()
		// Strip guidance from 12 of 20 steps (40% coverage).
		stripped := 0
		for i := range p.Phases {
			for j := range p.Phases[i].Steps {
				if stripped < 12 {
					p.Phases[i].Steps[j].Guidance = ""
					stripped++
				}
			}
		}

		s := TeachingClarity(p, SkillIntermediate)
		assert.Equal(t, 7, s.Score)
		assert.Contains(t, s.Feedback, "Only 8/20 steps carry real implementation guidance")
	})

	t.Run("short guidance does not count", func(t *testing.T) {
		p := teachingPlan()
		for i := range p.Phases {
			for j := range p.Phases[i].Steps {
				p.Phases[i].Steps[j].Guidance = "do it well" // under 20 chars
			}
		}

		s := TeachingClarity(p, SkillIntermediate)
		assert.Contains(t, s.Feedback, "Only 0/20 steps carry real implementation guidance")
	})

	t.Run("beginners need near-total coverage", func(t *testing.T) {
		p := teachingPlan()
		// 17/20 = 85% coverage: fine for intermediate, penalized twice
		// for beginners (under 90% and between 80-90% is only the
		// beginner penalty).
		for j := 0; j < 3; j++ {
			p.Phases[0].Steps[j].Guidance = ""
		}

		intermediate := TeachingClarity(p, SkillIntermediate)
		beginner := TeachingClarity(p, SkillBeginner)
		assert.Equal(t, 10, intermediate.Score)
		assert.Equal(t, 9, beginner.Score)
		assert.Contains(t, beginner.Feedback, "Beginner plans need guidance on nearly every step")
	})
}

func TestTeachingClarityNotesDepth(t *testing.T) {
	t.Run("missing notes", func(t *testing.T) {
		p := teachingPlan()
		p.Notes = ""

		s := TeachingClarity(p, SkillIntermediate)
		assert.Equal(t, 8, s.Score)
		assert.Contains(t, s.Feedback, "Global teaching notes are missing or too brief")
	})

	t.Run("shallow notes", func(t *testing.T) {
		p := teachingPlan()
		p.Notes = strings.Repeat("Build incrementally. ", 12) // ~250 chars

		s := TeachingClarity(p, SkillIntermediate)
		assert.Equal(t, 9, s.Score)
		assert.Contains(t, s.Feedback, "could go deeper")
	})
}

func TestTeachingClarityLearningArc(t *testing.T) {
	t.Run("no foundations up front", func(t *testing.T) {
		p := teachingPlan()
		p.Phases[0].Name = "Phase One"
		p.Phases[1].Name = "Phase Two"

		s := TeachingClarity(p, SkillIntermediate)
		assert.Equal(t, 9, s.Score)
		assert.Contains(t, s.Feedback, "Early phases don't read like foundations")
	})

	t.Run("no advanced work at the end", func(t *testing.T) {
		p := teachingPlan()
		p.Phases[3].Name = "More Features"
		p.Phases[4].Name = "Even More Features"

		s := TeachingClarity(p, SkillIntermediate)
		assert.Equal(t, 9, s.Score)
		assert.Contains(t, s.Feedback, "Late phases don't build toward advanced work")
	})

	t.Run("beginners are excused from the advanced tail", func(t *testing.T) {
		p := teachingPlan()
		p.Phases[3].Name = "More Features"
		p.Phases[4].Name = "Even More Features"

		s := TeachingClarity(p, SkillBeginner)
		assert.Equal(t, 10, s.Score)
	})
}
