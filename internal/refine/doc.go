// Package refine drives the draft-evaluate-revise loop: a generator
// produces plan drafts, the evaluation service judges them, and the
// composed feedback from each rejection steers the next draft. The
// loop runs under a hard iteration budget and an optional per-draft
// timeout, with rate limiting between generator calls.
package refine
