package evaluation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/forgelabs/planforge/internal/consistency"
	"github.com/forgelabs/planforge/internal/plan"
	"github.com/forgelabs/planforge/internal/rubric"
)

const instrumentationName = "github.com/forgelabs/planforge/internal/evaluation"

// Service evaluates plans against the structural validator and the
// quality rubric.
type Service interface {
	// Evaluate runs the full pipeline against one plan and returns the
	// verdict. It never fails on malformed plan content; structural
	// defects surface as critical issues in the result.
	Evaluate(ctx context.Context, p *plan.Plan, profile Profile) (*Result, error)
}

// Config configures the evaluation service.
type Config struct {
	// ExpectedPhases is the required phase count (default: 5).
	ExpectedPhases int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() *Config {
	return &Config{
		ExpectedPhases: consistency.DefaultExpectedPhases,
	}
}

// service implements the Service interface.
type service struct {
	config *Config
	logger *zap.Logger

	// Telemetry
	tracer      trace.Tracer
	meter       metric.Meter
	evalCounter metric.Int64Counter
}

// NewService creates a new evaluation service.
func NewService(cfg *Config, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if cfg.ExpectedPhases <= 0 {
		cfg.ExpectedPhases = consistency.DefaultExpectedPhases
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		config: cfg,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	s.initMetrics()

	return s, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (s *service) initMetrics() {
	var err error

	s.evalCounter, err = s.meter.Int64Counter(
		"planforge.evaluation.evaluations_total",
		metric.WithDescription("Total number of plan evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		s.logger.Warn("failed to create evaluation counter", zap.Error(err))
	}
}

// Evaluate implements Service.
func (s *service) Evaluate(ctx context.Context, p *plan.Plan, profile Profile) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.Evaluate")
	defer span.End()

	profile = profile.normalized()

	result := &Result{
		Scores: make(map[rubric.Criterion]rubric.Score, len(rubric.Criteria())),
	}

	// Structural validation first. Errors block approval; warnings
	// carry forward as suggestions.
	report := consistency.Validate(p, s.config.ExpectedPhases)
	result.Consistency = report
	for _, issue := range report.Errors() {
		result.CriticalIssues = append(result.CriticalIssues, issue.String())
	}
	for _, issue := range report.Warnings() {
		result.Suggestions = append(result.Suggestions, issue.String())
	}

	s.scorePlan(p, profile, result)

	if p != nil && p.Phases != nil {
		runHeuristics(p, &result.CriticalIssues, &result.Suggestions)
	}

	result.Approved = len(result.CriticalIssues) == 0 && allPass(result.Scores)
	result.Feedback = composeFeedback(result)

	verdict := "rejected"
	if result.Approved {
		verdict = "approved"
	}
	if s.evalCounter != nil {
		s.evalCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("verdict", verdict),
		))
	}
	recordResult(result, verdict)

	s.logger.Info("plan evaluated",
		zap.String("verdict", verdict),
		zap.Int("critical_issues", len(result.CriticalIssues)),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.String("skill_level", string(profile.SkillLevel)),
		zap.String("project_type", string(profile.ProjectType)),
	)
	span.SetAttributes(
		attribute.String("evaluation.verdict", verdict),
		attribute.Int("evaluation.critical_issues", len(result.CriticalIssues)),
	)

	return result, nil
}

// scorePlan runs every rubric scorer and folds failures into critical
// issues and borderline passes into suggestions.
func (s *service) scorePlan(p *plan.Plan, profile Profile, result *Result) {
	if p == nil {
		p = &plan.Plan{}
	}

	scores := []rubric.Score{
		rubric.Clarity(p.Idea.Summary()),
		rubric.Balance(p.Phases),
		rubric.FeasibilityForType(p, profile.ProjectType, profile.TimeConstraint),
		rubric.TeachingClarity(p, profile.SkillLevel),
		rubric.TechnicalDepth(p, profile.SkillLevel),
	}

	for _, sc := range scores {
		result.Scores[sc.Criterion] = sc
		if !sc.Passes() {
			result.CriticalIssues = append(result.CriticalIssues, fmt.Sprintf(
				"%s issues: %s", sc.Criterion, sc.Feedback))
			continue
		}
		if sc.Borderline() {
			result.Suggestions = append(result.Suggestions, fmt.Sprintf(
				"%s is close to the threshold (%d/%d): %s",
				sc.Criterion, sc.Score, sc.PassThreshold, sc.Feedback))
		}
	}
}

// allPass reports whether every computed score meets its threshold.
func allPass(scores map[rubric.Criterion]rubric.Score) bool {
	for _, sc := range scores {
		if !sc.Passes() {
			return false
		}
	}
	return true
}
