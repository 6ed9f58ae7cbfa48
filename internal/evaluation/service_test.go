package evaluation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/planforge/internal/plan"
	"github.com/forgelabs/planforge/internal/rubric"
)

const fixtureGuidance = "Implement the smallest working version first, then extend it while keeping the tests green."

// approvedPlan builds a plan that clears every structural check, every
// rubric threshold, and every supplementary heuristic.
func approvedPlan() *plan.Plan {
	phaseNames := []string{
		"Foundation and Setup",
		"Core Data Model",
		"Feature Build-out",
		"Integration and Testing",
		"Polish and Deployment",
	}
	stepTitles := []string{
		"Implement the next slice of functionality",
		"Write unit tests for the new behavior",
		"Design the database schema changes",
		"Add error handling and logging",
		"Wire the module into the pipeline",
		"Document the public interface",
		"Refactor toward the target structure",
		"Add input validation and auth checks",
		"Benchmark and tune the hot path",
	}

	p := &plan.Plan{
		Idea: plan.Idea{
			RawDescription: "a finance tracker",
			RefinedSummary: "Build a personal finance tracker using Go and SQLite that imports " +
				"bank CSV exports, categorizes transactions with deterministic rules, and " +
				"renders monthly summaries in the terminal with exportable yearly reports.",
		},
		Notes: strings.Repeat("Each phase builds on the previous one and revisits earlier concepts at greater depth. ", 6),
	}

	idx := 1
	for i, name := range phaseNames {
		ph := plan.Phase{Index: i + 1, Name: name}
		for j := 0; j < 9; j++ {
			ph.Steps = append(ph.Steps, plan.Step{
				Index:       idx,
				Title:       stepTitles[j],
				Description: "Complete this work in a single focused session.",
				Guidance:    fixtureGuidance,
			})
			idx++
		}
		p.Phases = append(p.Phases, ph)
	}
	return p
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(nil, nil)
	require.NoError(t, err)
	return svc
}

func TestEvaluateApprovedPlan(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Evaluate(context.Background(), approvedPlan(), Profile{
		SkillLevel:     rubric.SkillIntermediate,
		ProjectType:    rubric.ProjectMedium,
		TimeConstraint: "2 weeks",
	})
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Empty(t, result.CriticalIssues)
	assert.Empty(t, result.Suggestions)
	require.NotNil(t, result.Consistency)
	assert.True(t, result.Consistency.Passed())

	for _, c := range rubric.Criteria() {
		score := result.Score(c)
		assert.Equal(t, 10, score.Score, "criterion %s", c)
		assert.True(t, score.Passes())
	}

	assert.Contains(t, result.Feedback, "Plan approved.")
	assert.Contains(t, result.Feedback, "clarity")
	assert.Contains(t, result.Feedback, "technical_depth")
}

func TestEvaluateWrongPhaseCount(t *testing.T) {
	svc := newTestService(t)

	p := approvedPlan()
	p.Phases = p.Phases[:3]

	result, err := svc.Evaluate(context.Background(), p, Profile{})
	require.NoError(t, err)

	assert.False(t, result.Approved)
	found := false
	for _, issue := range result.CriticalIssues {
		if strings.Contains(issue, "Expected 5 phases but found 3") {
			found = true
		}
	}
	assert.True(t, found, "phase count error should be a critical issue")
	assert.Contains(t, result.Feedback, "Plan rejected.")
	assert.Contains(t, result.Feedback, "Expected 5 phases but found 3")
}

func TestEvaluateSingleFailingScoreRejects(t *testing.T) {
	svc := newTestService(t)

	p := approvedPlan()
	p.Idea.RefinedSummary = "maybe do something" // brief and vague
	p.Idea.RawDescription = ""

	result, err := svc.Evaluate(context.Background(), p, Profile{})
	require.NoError(t, err)

	assert.False(t, result.Approved)
	assert.False(t, result.Score(rubric.CriterionClarity).Passes())

	found := false
	for _, issue := range result.CriticalIssues {
		if strings.HasPrefix(issue, "clarity issues:") {
			found = true
		}
	}
	assert.True(t, found, "failing score should become a critical issue")
}

func TestEvaluateBorderlineScoreBecomesSuggestion(t *testing.T) {
	svc := newTestService(t)

	// Dropping the notes costs teaching_value two points: 8/10 against
	// a threshold of 7 still passes, but only just.
	p := approvedPlan()
	p.Notes = ""

	result, err := svc.Evaluate(context.Background(), p, Profile{})
	require.NoError(t, err)

	assert.True(t, result.Approved)
	teaching := result.Score(rubric.CriterionTeachingValue)
	assert.Equal(t, 8, teaching.Score)
	assert.True(t, teaching.Borderline())

	found := false
	for _, s := range result.Suggestions {
		if strings.HasPrefix(s, "teaching_value is close to the threshold (8/7)") {
			found = true
		}
	}
	assert.True(t, found, "borderline score should surface as a suggestion")
}

func TestEvaluateNilPlan(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Evaluate(context.Background(), nil, Profile{})
	require.NoError(t, err, "malformed input must never error")

	assert.False(t, result.Approved)
	require.NotEmpty(t, result.CriticalIssues)
	assert.Contains(t, result.CriticalIssues[0], "Plan has no phases collection")
}

func TestEvaluateValidatorWarningsBecomeSuggestions(t *testing.T) {
	svc := newTestService(t)

	p := approvedPlan()
	p.Phases[2].Index = 9 // numbering drift: warning, not error

	result, err := svc.Evaluate(context.Background(), p, Profile{})
	require.NoError(t, err)

	assert.True(t, result.Approved, "warnings must not block approval")
	found := false
	for _, s := range result.Suggestions {
		if strings.Contains(s, "Expected phase index 3 but found 9") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluateProfileDefaults(t *testing.T) {
	p := Profile{}.normalized()
	assert.Equal(t, rubric.SkillIntermediate, p.SkillLevel)
	assert.Equal(t, rubric.ProjectMedium, p.ProjectType)

	explicit := Profile{SkillLevel: rubric.SkillAdvanced, ProjectType: rubric.ProjectToy}.normalized()
	assert.Equal(t, rubric.SkillAdvanced, explicit.SkillLevel)
	assert.Equal(t, rubric.ProjectToy, explicit.ProjectType)
}

func TestNewServiceDefaults(t *testing.T) {
	svc, err := NewService(&Config{ExpectedPhases: -1}, nil)
	require.NoError(t, err)
	require.NotNil(t, svc)

	// Negative config falls back to the default phase count.
	p := approvedPlan()
	result, err := svc.Evaluate(context.Background(), p, Profile{})
	require.NoError(t, err)
	assert.True(t, result.Approved)
}
