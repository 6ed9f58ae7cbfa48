package refine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/forgelabs/planforge/internal/evaluation"
	"github.com/forgelabs/planforge/internal/plan"
)

const instrumentationName = "github.com/forgelabs/planforge/internal/refine"

// ErrBudgetExhausted is returned when the iteration budget runs out
// without an approved plan and best-effort acceptance is disabled.
var ErrBudgetExhausted = errors.New("refine: iteration budget exhausted without approval")

// Generator produces one plan draft. Implementations receive the
// feedback from the previous rejection, when there was one.
type Generator interface {
	GenerateDraft(ctx context.Context, req *DraftRequest) (*plan.Plan, error)
}

// DraftRequest carries everything a generator needs for one attempt.
type DraftRequest struct {
	// Idea is the raw project description to plan for.
	Idea string

	// Profile parameterizes scoring and scope expectations.
	Profile evaluation.Profile

	// Feedback is the composed report from the previous rejected
	// attempt; empty on the first draft.
	Feedback string

	// Attempt is the 1-based iteration number.
	Attempt int
}

// Attempt records the outcome of one loop iteration.
type Attempt struct {
	// ID uniquely identifies this attempt across logs and traces.
	ID string `json:"id"`

	// Number is the 1-based iteration number.
	Number int `json:"number"`

	// Result is the evaluation outcome, nil when the generator failed.
	Result *evaluation.Result `json:"result,omitempty"`

	// Err holds the generator failure, if any.
	Err error `json:"-"`
}

// Outcome is the final result of a refinement run.
type Outcome struct {
	// Plan is the last generated plan; nil when every attempt failed
	// to produce a draft.
	Plan *plan.Plan `json:"plan,omitempty"`

	// Result is the evaluation of that plan.
	Result *evaluation.Result `json:"result,omitempty"`

	// Attempts lists every iteration in order.
	Attempts []Attempt `json:"attempts"`

	// ForcedApproval is true when the plan was accepted despite
	// rejection because best-effort acceptance was enabled.
	ForcedApproval bool `json:"forced_approval"`
}

// Config configures the refinement loop.
type Config struct {
	// MaxIterations bounds draft attempts (default: 3).
	MaxIterations int

	// DraftTimeout bounds one generator call; zero disables the
	// per-draft deadline.
	DraftTimeout time.Duration

	// RequestsPerMinute throttles generator calls; zero disables
	// throttling.
	RequestsPerMinute int

	// AcceptBestEffort returns the final rejected plan instead of
	// ErrBudgetExhausted when the budget runs out.
	AcceptBestEffort bool

	// OnAttempt, when set, is invoked after each iteration.
	OnAttempt func(Attempt)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxIterations: 3,
		DraftTimeout:  2 * time.Minute,
	}
}

// Loop runs the draft-evaluate-revise cycle.
type Loop struct {
	config    *Config
	generator Generator
	evaluator evaluation.Service
	logger    *zap.Logger
	limiter   *rate.Limiter

	tracer         trace.Tracer
	meter          metric.Meter
	attemptCounter metric.Int64Counter
}

// NewLoop creates a refinement loop.
func NewLoop(cfg *Config, gen Generator, eval evaluation.Service, logger *zap.Logger) (*Loop, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if eval == nil {
		return nil, errors.New("evaluation service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	l := &Loop{
		config:    cfg,
		generator: gen,
		evaluator: eval,
		logger:    logger,
		limiter:   limiter,
		tracer:    otel.Tracer(instrumentationName),
		meter:     otel.Meter(instrumentationName),
	}

	l.initMetrics()

	return l, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (l *Loop) initMetrics() {
	var err error

	l.attemptCounter, err = l.meter.Int64Counter(
		"planforge.refine.attempts_total",
		metric.WithDescription("Total number of refinement attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		l.logger.Warn("failed to create attempt counter", zap.Error(err))
	}
}

// Run drafts, evaluates, and revises until a plan is approved or the
// iteration budget runs out. A generator failure consumes an iteration
// like a rejection does. The context is checked between iterations so
// cancellation takes effect at the next boundary.
func (l *Loop) Run(ctx context.Context, idea string, profile evaluation.Profile) (*Outcome, error) {
	ctx, span := l.tracer.Start(ctx, "refine.Run")
	defer span.End()

	outcome := &Outcome{}
	feedback := ""

	for i := 1; i <= l.config.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("refine loop cancelled: %w", err)
		}
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return outcome, fmt.Errorf("refine rate limit wait: %w", err)
			}
		}

		attempt := Attempt{
			ID:     uuid.New().String(),
			Number: i,
		}

		draft, err := l.generate(ctx, &DraftRequest{
			Idea:     idea,
			Profile:  profile,
			Feedback: feedback,
			Attempt:  i,
		})
		if err != nil {
			attempt.Err = err
			l.recordAttempt(ctx, outcome, attempt, "generator_error")
			l.logger.Warn("draft generation failed",
				zap.String("attempt_id", attempt.ID),
				zap.Int("attempt", i),
				zap.Error(err),
			)
			continue
		}

		result, err := l.evaluator.Evaluate(ctx, draft, profile)
		if err != nil {
			return outcome, fmt.Errorf("evaluate draft %d: %w", i, err)
		}

		attempt.Result = result
		outcome.Plan = draft
		outcome.Result = result

		if result.Approved {
			l.recordAttempt(ctx, outcome, attempt, "approved")
			l.logger.Info("plan approved",
				zap.String("attempt_id", attempt.ID),
				zap.Int("attempt", i),
			)
			return outcome, nil
		}

		l.recordAttempt(ctx, outcome, attempt, "rejected")
		l.logger.Info("plan rejected, refining",
			zap.String("attempt_id", attempt.ID),
			zap.Int("attempt", i),
			zap.Int("critical_issues", len(result.CriticalIssues)),
		)
		feedback = result.Feedback
	}

	span.SetAttributes(attribute.Bool("refine.budget_exhausted", true))

	if l.config.AcceptBestEffort && outcome.Result != nil {
		// Copy so the force-approval never mutates the evaluator's
		// verdict for this plan.
		forced := *outcome.Result
		forced.Approved = true
		outcome.Result = &forced
		outcome.ForcedApproval = true
		l.logger.Warn("accepting rejected plan after budget exhaustion",
			zap.Int("iterations", l.config.MaxIterations),
			zap.Int("critical_issues", len(forced.CriticalIssues)),
		)
		return outcome, nil
	}

	return outcome, ErrBudgetExhausted
}

// generate calls the generator under the per-draft deadline.
func (l *Loop) generate(ctx context.Context, req *DraftRequest) (*plan.Plan, error) {
	if l.config.DraftTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.DraftTimeout)
		defer cancel()
	}
	return l.generator.GenerateDraft(ctx, req)
}

func (l *Loop) recordAttempt(ctx context.Context, outcome *Outcome, attempt Attempt, status string) {
	outcome.Attempts = append(outcome.Attempts, attempt)
	if l.attemptCounter != nil {
		l.attemptCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", status),
		))
	}
	if l.config.OnAttempt != nil {
		l.config.OnAttempt(attempt)
	}
}
