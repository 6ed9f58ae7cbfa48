package plan

import "strings"

// Idea is the raw and refined representation of the user's project idea.
type Idea struct {
	// RawDescription is the original idea text as entered by the user.
	RawDescription string `json:"raw_description"`

	// RefinedSummary is the cleaned, expanded version of the idea.
	RefinedSummary string `json:"refined_summary"`

	// Constraints holds free-form project constraints such as
	// "time": "1-2 weeks" or "complexity": "medium".
	Constraints map[string]string `json:"constraints,omitempty"`
}

// Summary returns the refined summary, falling back to the raw
// description when the generator did not produce one.
func (i Idea) Summary() string {
	if strings.TrimSpace(i.RefinedSummary) != "" {
		return i.RefinedSummary
	}
	return i.RawDescription
}

// Goals captures the learning and technical objectives of the project.
type Goals struct {
	Learning  []string `json:"learning_goals"`
	Technical []string `json:"technical_goals"`
}

// Stack describes the technology choices for the project.
type Stack struct {
	Frontend  string   `json:"frontend,omitempty"`
	Backend   string   `json:"backend,omitempty"`
	Storage   string   `json:"storage,omitempty"`
	Libraries []string `json:"libraries,omitempty"`
}

// Names returns all non-empty stack names, lowercased, for keyword
// matching by the scorers.
func (s Stack) Names() []string {
	names := make([]string, 0, 3+len(s.Libraries))
	for _, n := range []string{s.Frontend, s.Backend, s.Storage} {
		if strings.TrimSpace(n) != "" {
			names = append(names, strings.ToLower(n))
		}
	}
	for _, lib := range s.Libraries {
		if strings.TrimSpace(lib) != "" {
			names = append(names, strings.ToLower(lib))
		}
	}
	return names
}

// Step is a single implementation step within a phase.
type Step struct {
	// Index is the step number, intended to be globally unique across
	// the whole plan and independent of the owning phase.
	Index int `json:"index"`

	// Title is a short, actionable step name.
	Title string `json:"title"`

	// Description contains detailed instructions for the step.
	Description string `json:"description"`

	// Guidance is the implementation/teaching annotation for the step.
	// This is the single canonical field; the generator's legacy key
	// names are folded into it at decode time (see parse.go).
	Guidance string `json:"guidance"`

	// Dependencies lists step indices that must be completed first.
	Dependencies []int `json:"dependencies,omitempty"`
}

// WhatYouLearn exposes the legacy name for the guidance annotation as
// a read-only accessor so older callers keep compiling. It can never
// diverge from Guidance.
func (s Step) WhatYouLearn() string { return s.Guidance }

// Phase is a major milestone in the project containing ordered steps.
type Phase struct {
	// Index is the 1-based phase number.
	Index int `json:"index"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// Plan is the complete generated project plan under evaluation.
type Plan struct {
	Idea   Idea    `json:"idea"`
	Goals  Goals   `json:"goals"`
	Stack  Stack   `json:"stack"`
	Phases []Phase `json:"phases"`

	// Notes holds global pedagogical commentary on the learning arc.
	Notes string `json:"notes"`
}

// TotalSteps counts steps across all phases.
func (p *Plan) TotalSteps() int {
	total := 0
	for _, ph := range p.Phases {
		total += len(ph.Steps)
	}
	return total
}

// EachStep calls fn for every step in phase order. Iteration stops
// early when fn returns false.
func (p *Plan) EachStep(fn func(ph Phase, st Step) bool) {
	for _, ph := range p.Phases {
		for _, st := range ph.Steps {
			if !fn(ph, st) {
				return
			}
		}
	}
}
