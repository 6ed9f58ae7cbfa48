package rubric

import "strings"

// Fixed keyword lists used by the scorers. All matching is
// case-insensitive substring search, matching how the generator's
// free text actually reads.

// vagueWords flag hand-wavy concept descriptions.
var vagueWords = []string{"something", "stuff", "things", "maybe", "somehow"}

// foundationKeywords are expected in early phase names.
var foundationKeywords = []string{
	"setup", "foundation", "basic", "core", "model", "scaffold", "environment", "intro",
}

// advancedKeywords are expected in late phase names.
var advancedKeywords = []string{
	"polish", "deploy", "advanced", "optimiz", "integrat", "test", "harden", "production", "refine",
}

// depthGroups are the topic groups scanned for technical depth. Each
// group counts once no matter how many of its keywords appear.
var depthGroups = map[string][]string{
	"testing":        {"test", "qa", "verif", "assert"},
	"deployment":     {"deploy", "release", "docker", "ci/cd", "pipeline"},
	"architecture":   {"architect", "design", "structur", "refactor", "pattern", "modul"},
	"error handling": {"error", "exception", "logging", "retry", "resilien"},
	"database":       {"database", "sql", "storage", "persist", "schema", "migration"},
	"security":       {"security", "auth", "encrypt", "sanitiz", "validation"},
}

// complexFrameworks are stack names considered too heavy for a
// beginner plan.
var complexFrameworks = []string{
	"kubernetes", "kafka", "terraform", "microservice", "graphql", "react native", "temporal",
}

// trivialFrameworks are stack names that alone suggest an advanced
// plan is underpowered.
var trivialFrameworks = []string{
	"streamlit", "sqlite", "flask", "tkinter", "json files", "csv",
}

// deploymentKeywords mark steps that smell like production work, which
// a toy project should mostly avoid.
var deploymentKeywords = []string{"deploy", "production", "kubernetes", "docker", "ci/cd"}

// ambitiousKeywords mark the kind of steps an ambitious plan must
// actually contain.
var ambitiousKeywords = []string{"advanced", "optimiz", "production", "test", "scal", "benchmark"}

// containsAny reports whether text contains at least one keyword.
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// countPresent counts how many keywords from the list appear in text.
func countPresent(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
