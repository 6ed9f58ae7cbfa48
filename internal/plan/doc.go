// Package plan defines the project plan data model shared by the
// validator, the rubric scorers, and the evaluation orchestrator.
//
// A Plan is produced once per generation attempt by an external
// generator, consumed read-only by the evaluation engine, and either
// discarded (rejected) or handed to the renderer (approved). Nothing
// in this module mutates a Plan after decoding.
package plan
