package evaluation

import (
	"github.com/forgelabs/planforge/internal/consistency"
	"github.com/forgelabs/planforge/internal/rubric"
)

// Profile parameterizes scoring for one user.
type Profile struct {
	// SkillLevel is one of beginner, intermediate, advanced.
	SkillLevel rubric.SkillLevel `json:"skill_level"`

	// ProjectType is one of toy, medium, ambitious.
	ProjectType rubric.ProjectType `json:"project_type"`

	// TimeConstraint is free text containing a week count,
	// e.g. "2 weeks" or "1-2 weeks".
	TimeConstraint string `json:"time_constraint"`
}

// normalized fills defaults for absent profile fields.
func (p Profile) normalized() Profile {
	if p.SkillLevel == "" {
		p.SkillLevel = rubric.SkillIntermediate
	}
	if p.ProjectType == "" {
		p.ProjectType = rubric.ProjectMedium
	}
	return p
}

// Result is the full outcome of evaluating one plan.
type Result struct {
	// Approved is true when there are no critical issues and every
	// rubric score meets its own threshold.
	Approved bool `json:"approved"`

	// Scores holds one RubricScore per criterion.
	Scores map[rubric.Criterion]rubric.Score `json:"scores"`

	// Consistency is the structural report from the validator.
	Consistency *consistency.Report `json:"consistency"`

	// CriticalIssues are blocking findings, verbatim.
	CriticalIssues []string `json:"critical_issues"`

	// Suggestions are non-blocking findings.
	Suggestions []string `json:"suggestions"`

	// Feedback is the composed multi-paragraph report.
	Feedback string `json:"feedback"`
}

// Score returns the score for a criterion, or a zero Score when the
// criterion was not computed.
func (r *Result) Score(c rubric.Criterion) rubric.Score {
	return r.Scores[c]
}
