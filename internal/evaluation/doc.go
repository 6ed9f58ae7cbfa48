// Package evaluation runs the consistency validator and all rubric
// scorers against one plan, folds the findings into critical-issue and
// suggestion buckets, and renders the approve/reject verdict with a
// composed feedback report.
//
// The service holds no state between calls; each Evaluate is
// self-contained and safe to run concurrently across independent
// plans.
package evaluation
