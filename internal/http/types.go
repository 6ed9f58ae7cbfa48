package http

import (
	"encoding/json"

	"github.com/forgelabs/planforge/internal/consistency"
	"github.com/forgelabs/planforge/internal/evaluation"
	"github.com/forgelabs/planforge/internal/refine"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ValidateRequest is the request body for POST /api/v1/validate.
type ValidateRequest struct {
	// Plan is the raw plan document; decoded leniently so structural
	// defects become validator findings, not HTTP errors.
	Plan json.RawMessage `json:"plan"`

	// ExpectedPhases overrides the configured phase count when > 0.
	ExpectedPhases int `json:"expected_phases,omitempty"`
}

// ValidateResponse is the response body for POST /api/v1/validate.
type ValidateResponse struct {
	Passed  bool                `json:"passed"`
	Summary string              `json:"summary"`
	Issues  []consistency.Issue `json:"issues"`
}

// EvaluateRequest is the request body for POST /api/v1/evaluate.
type EvaluateRequest struct {
	Plan    json.RawMessage    `json:"plan"`
	Profile evaluation.Profile `json:"profile"`
}

// EvaluateResponse is the response body for POST /api/v1/evaluate.
type EvaluateResponse struct {
	Result *evaluation.Result `json:"result"`
}

// RefineRequest is the request body for POST /api/v1/refine.
type RefineRequest struct {
	Idea    string             `json:"idea"`
	Profile evaluation.Profile `json:"profile"`
}

// RefineResponse is the response body for POST /api/v1/refine.
type RefineResponse struct {
	Outcome *refine.Outcome `json:"outcome"`
}
