package rubric

import "strings"

// Criterion names one quality dimension of a plan.
type Criterion string

const (
	CriterionClarity        Criterion = "clarity"
	CriterionBalance        Criterion = "balance"
	CriterionFeasibility    Criterion = "feasibility"
	CriterionTeachingValue  Criterion = "teaching_value"
	CriterionTechnicalDepth Criterion = "technical_depth"
)

// Criteria lists every criterion in reporting order.
func Criteria() []Criterion {
	return []Criterion{
		CriterionClarity,
		CriterionBalance,
		CriterionFeasibility,
		CriterionTeachingValue,
		CriterionTechnicalDepth,
	}
}

// Pass thresholds per criterion.
const (
	ClarityThreshold        = 7
	BalanceThreshold        = 6
	FeasibilityThreshold    = 6
	TeachingValueThreshold  = 7
	TechnicalDepthThreshold = 6
)

// SkillLevel is the user's declared experience level.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ProjectType is the declared ambition of the project.
type ProjectType string

const (
	ProjectToy       ProjectType = "toy"
	ProjectMedium    ProjectType = "medium"
	ProjectAmbitious ProjectType = "ambitious"
)

// Score is the result of one criterion scorer.
type Score struct {
	Criterion Criterion `json:"criterion"`

	// Score is the 0-10 value after penalties.
	Score int `json:"score"`

	// Feedback explains the score: one fragment per fired penalty,
	// or a single positive sentence when none fired.
	Feedback string `json:"feedback"`

	// PassThreshold is the criterion-specific minimum passing score.
	PassThreshold int `json:"pass_threshold"`
}

// Passes reports whether the score meets its threshold.
func (s Score) Passes() bool { return s.Score >= s.PassThreshold }

// Borderline reports whether the score passes but sits within one
// point of its threshold, which downgrades it to a suggestion.
func (s Score) Borderline() bool {
	return s.Passes() && s.Score-s.PassThreshold <= 1
}

// scorecard accumulates penalties for one criterion.
type scorecard struct {
	score     int
	fragments []string
}

func newScorecard() *scorecard {
	return &scorecard{score: 10}
}

// penalize subtracts points and records the reason.
func (c *scorecard) penalize(points int, reason string) {
	c.score -= points
	c.fragments = append(c.fragments, reason)
}

// finish clamps the score and joins the feedback fragments, using the
// given sentence when no penalty fired.
func (c *scorecard) finish(criterion Criterion, threshold int, clean string) Score {
	score := c.score
	if score < 0 {
		score = 0
	}
	feedback := clean
	if len(c.fragments) > 0 {
		feedback = strings.Join(c.fragments, " | ")
	}
	return Score{
		Criterion:     criterion,
		Score:         score,
		Feedback:      feedback,
		PassThreshold: threshold,
	}
}
