package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a generator draft into a Plan. Decoding is lenient:
// the generator is an unreliable collaborator, so structural defects
// are preserved for the validator to characterize instead of being
// rejected here. Only syntactically invalid JSON returns an error.
//
// Leniency rules:
//   - unknown fields are ignored
//   - absent fields keep their zero values; a missing "phases" key
//     decodes to a nil slice so the validator can flag the plan as
//     structurally absent
//   - step guidance is accepted under the legacy keys
//     "teaching_guidance" and "what_you_learn" when "guidance" is empty
//   - dependency entries may be numbers or numeric strings; anything
//     non-numeric decodes to -1, which the validator reports as a
//     dangling reference
//   - constraint values may be any scalar and are stringified
func Decode(data []byte) (*Plan, error) {
	var p Plan
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding plan draft: %w", err)
	}
	return &p, nil
}

// stepEnvelope mirrors Step with the legacy guidance aliases and the
// tolerant dependency list.
type stepEnvelope struct {
	Index            flexInt     `json:"index"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Guidance         string      `json:"guidance"`
	TeachingGuidance string      `json:"teaching_guidance"`
	WhatYouLearn     string      `json:"what_you_learn"`
	Dependencies     flexIntList `json:"dependencies"`
}

// UnmarshalJSON implements json.Unmarshaler with the legacy-alias and
// tolerant-dependency rules described on Decode.
func (s *Step) UnmarshalJSON(data []byte) error {
	var env stepEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	guidance := env.Guidance
	if strings.TrimSpace(guidance) == "" {
		guidance = env.TeachingGuidance
	}
	if strings.TrimSpace(guidance) == "" {
		guidance = env.WhatYouLearn
	}

	*s = Step{
		Index:        int(env.Index),
		Title:        env.Title,
		Description:  env.Description,
		Guidance:     guidance,
		Dependencies: env.Dependencies,
	}
	return nil
}

// UnmarshalJSON accepts any scalar constraint values and stringifies
// them, dropping nested structures.
func (i *Idea) UnmarshalJSON(data []byte) error {
	var env struct {
		RawDescription string                     `json:"raw_description"`
		RefinedSummary string                     `json:"refined_summary"`
		Constraints    map[string]json.RawMessage `json:"constraints"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	i.RawDescription = env.RawDescription
	i.RefinedSummary = env.RefinedSummary
	if len(env.Constraints) == 0 {
		i.Constraints = nil
		return nil
	}

	i.Constraints = make(map[string]string, len(env.Constraints))
	for k, raw := range env.Constraints {
		i.Constraints[k] = scalarString(raw)
	}
	return nil
}

// flexInt decodes a JSON number or numeric string; anything else
// becomes -1 so downstream checks flag it rather than decoding failing.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = flexInt(coerceInt(data))
	return nil
}

// flexIntList decodes a JSON array with the same coercion per element.
// A non-array value decodes to an empty list.
type flexIntList []int

func (f *flexIntList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*f = nil
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, el := range raw {
		out = append(out, coerceInt(el))
	}
	*f = out
	return nil
}

// coerceInt converts a raw JSON scalar to an int, returning -1 for
// anything that is not a whole number.
func coerceInt(data []byte) int {
	text := strings.TrimSpace(string(data))
	text = strings.Trim(text, `"`)
	if text == "" || text == "null" {
		return -1
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	// Generators occasionally emit floats like 3.0 for indices.
	if fl, err := strconv.ParseFloat(text, 64); err == nil && fl == float64(int(fl)) {
		return int(fl)
	}
	return -1
}

// scalarString renders a raw JSON scalar as a plain string.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}
