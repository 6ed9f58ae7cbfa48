// Package generate produces plan drafts from a project idea by calling
// the Anthropic Messages API. The client prompts for JSON matching the
// plan schema, extracts the JSON blob from the model's reply, and
// decodes it leniently so structural defects reach the evaluator
// instead of failing the draft.
package generate
