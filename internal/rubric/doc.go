// Package rubric scores a generated plan against the quality criteria
// used to decide approval: clarity, balance, teaching value, technical
// depth, and feasibility.
//
// Every scorer is a pure function over the plan. Each starts from a
// ceiling of 10 and applies independent, named, additive penalties
// (floored at 0); every penalty that fires appends one feedback
// fragment. The shape keeps each criterion auditable — a reviewer can
// map any score back to exactly the conditions that fired — and lets
// each condition be triggered in isolation by tests.
package rubric
