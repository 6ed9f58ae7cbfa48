package refine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/planforge/internal/evaluation"
	"github.com/forgelabs/planforge/internal/plan"
)

// fakeGenerator returns canned drafts in order, recording the requests
// it receives.
type fakeGenerator struct {
	drafts   []*plan.Plan
	errs     []error
	requests []*DraftRequest
	calls    int
}

func (f *fakeGenerator) GenerateDraft(ctx context.Context, req *DraftRequest) (*plan.Plan, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.drafts) {
		return f.drafts[i], nil
	}
	return &plan.Plan{}, nil
}

// blockingGenerator waits for the context to expire.
type blockingGenerator struct{}

func (blockingGenerator) GenerateDraft(ctx context.Context, req *DraftRequest) (*plan.Plan, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeEvaluator approves a draft when its Notes say so.
type fakeEvaluator struct {
	evaluations int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, p *plan.Plan, profile evaluation.Profile) (*evaluation.Result, error) {
	f.evaluations++
	if p != nil && p.Notes == "approve" {
		return &evaluation.Result{Approved: true, Feedback: "Plan approved."}, nil
	}
	return &evaluation.Result{
		Approved:       false,
		CriticalIssues: []string{"not good enough"},
		Feedback:       "Plan rejected. Fix the issues.",
	}, nil
}

func TestLoopApprovesOnLaterAttempt(t *testing.T) {
	gen := &fakeGenerator{
		drafts: []*plan.Plan{
			{Notes: "reject"},
			{Notes: "approve"},
		},
	}
	eval := &fakeEvaluator{}

	var observed []int
	loop, err := NewLoop(&Config{
		MaxIterations: 3,
		OnAttempt:     func(a Attempt) { observed = append(observed, a.Number) },
	}, gen, eval, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(context.Background(), "an idea", evaluation.Profile{})
	require.NoError(t, err)

	assert.True(t, outcome.Result.Approved)
	assert.False(t, outcome.ForcedApproval)
	assert.Len(t, outcome.Attempts, 2)
	assert.Equal(t, []int{1, 2}, observed)
	assert.Equal(t, 2, eval.evaluations)

	// The second draft request carries the first rejection's feedback.
	require.Len(t, gen.requests, 2)
	assert.Empty(t, gen.requests[0].Feedback)
	assert.Equal(t, "Plan rejected. Fix the issues.", gen.requests[1].Feedback)
	assert.Equal(t, 1, gen.requests[0].Attempt)
	assert.Equal(t, 2, gen.requests[1].Attempt)
}

func TestLoopBudgetExhausted(t *testing.T) {
	gen := &fakeGenerator{drafts: []*plan.Plan{{}, {}, {}}}
	loop, err := NewLoop(&Config{MaxIterations: 3}, gen, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(context.Background(), "an idea", evaluation.Profile{})

	assert.ErrorIs(t, err, ErrBudgetExhausted)
	require.NotNil(t, outcome)
	assert.Len(t, outcome.Attempts, 3)
	require.NotNil(t, outcome.Result)
	assert.False(t, outcome.Result.Approved)
	assert.False(t, outcome.ForcedApproval)
}

func TestLoopAcceptBestEffort(t *testing.T) {
	gen := &fakeGenerator{drafts: []*plan.Plan{{}, {}}}
	loop, err := NewLoop(&Config{
		MaxIterations:    2,
		AcceptBestEffort: true,
	}, gen, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(context.Background(), "an idea", evaluation.Profile{})
	require.NoError(t, err)

	assert.True(t, outcome.ForcedApproval)
	assert.True(t, outcome.Result.Approved)

	// The forced verdict is a copy; the per-attempt record keeps the
	// evaluator's original rejection.
	last := outcome.Attempts[len(outcome.Attempts)-1]
	require.NotNil(t, last.Result)
	assert.False(t, last.Result.Approved)
}

func TestLoopGeneratorErrorConsumesIteration(t *testing.T) {
	gen := &fakeGenerator{
		errs:   []error{errors.New("api unavailable"), nil},
		drafts: []*plan.Plan{nil, {Notes: "approve"}},
	}
	loop, err := NewLoop(&Config{MaxIterations: 2}, gen, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(context.Background(), "an idea", evaluation.Profile{})
	require.NoError(t, err)

	assert.True(t, outcome.Result.Approved)
	require.Len(t, outcome.Attempts, 2)
	assert.Error(t, outcome.Attempts[0].Err)
	assert.Nil(t, outcome.Attempts[0].Result)
}

func TestLoopDraftTimeoutConsumesIteration(t *testing.T) {
	loop, err := NewLoop(&Config{
		MaxIterations: 2,
		DraftTimeout:  10 * time.Millisecond,
	}, blockingGenerator{}, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(context.Background(), "an idea", evaluation.Profile{})

	assert.ErrorIs(t, err, ErrBudgetExhausted)
	require.Len(t, outcome.Attempts, 2)
	for _, a := range outcome.Attempts {
		assert.ErrorIs(t, a.Err, context.DeadlineExceeded)
	}
}

func TestLoopCancelledBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{drafts: []*plan.Plan{{}}}
	loop, err := NewLoop(&Config{
		MaxIterations: 5,
		OnAttempt:     func(Attempt) { cancel() },
	}, gen, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, err := loop.Run(ctx, "an idea", evaluation.Profile{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outcome.Attempts, 1)
}

func TestLoopAttemptIDsAreUnique(t *testing.T) {
	gen := &fakeGenerator{drafts: []*plan.Plan{{}, {}, {}}}
	loop, err := NewLoop(&Config{MaxIterations: 3}, gen, &fakeEvaluator{}, nil)
	require.NoError(t, err)

	outcome, _ := loop.Run(context.Background(), "an idea", evaluation.Profile{})

	ids := make(map[string]bool)
	for _, a := range outcome.Attempts {
		assert.NotEmpty(t, a.ID)
		ids[a.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestNewLoopValidation(t *testing.T) {
	eval := &fakeEvaluator{}

	_, err := NewLoop(nil, nil, eval, nil)
	assert.Error(t, err, "generator is required")

	_, err = NewLoop(nil, &fakeGenerator{}, nil, nil)
	assert.Error(t, err, "evaluation service is required")

	loop, err := NewLoop(nil, &fakeGenerator{}, eval, nil)
	require.NoError(t, err)
	assert.NotNil(t, loop)
}
