// Package consistency checks the structural invariants of a generated
// plan: phase count, global step numbering, and dependency legality.
//
// Every sub-check runs unconditionally so one failure never hides
// another; generated plans are frequently malformed in several ways at
// once and the caller needs the full defect list to decide between
// retrying generation and giving up. Defects are reported as typed
// issues, never as errors (see the error-handling notes on Validate).
package consistency
