package consistency

import "fmt"

// Severity classifies how blocking an issue is.
type Severity string

const (
	// SeverityError blocks approval.
	SeverityError Severity = "error"
	// SeverityWarning should be fixed but does not block approval.
	SeverityWarning Severity = "warning"
)

// Issue categories.
const (
	CategoryStructure     = "structure"
	CategoryPhaseCount    = "phase_count"
	CategoryPhaseOrder    = "phase_numbering"
	CategoryStepNumbering = "step_numbering"
	CategoryDependencies  = "dependencies"
)

// Issue is a single structural problem found in a plan.
type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`

	// Location is a human-readable pointer such as "Phase 2, Step 5".
	Location string `json:"location,omitempty"`
}

func (i Issue) String() string {
	if i.Location == "" {
		return fmt.Sprintf("%s: %s", i.Category, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Category, i.Message, i.Location)
}

// Report is the ordered list of issues produced by Validate.
type Report struct {
	Issues []Issue `json:"issues"`

	phaseCount int
	stepCount  int
}

// Passed reports whether the plan has no error-severity issues.
func (r *Report) Passed() bool {
	return r.ErrorCount() == 0
}

// ErrorCount counts error-severity issues.
func (r *Report) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount counts warning-severity issues.
func (r *Report) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Errors returns the error-severity issues in order.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues in order.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Summary renders the aggregate verdict: issue counts when defects
// were found, otherwise a success message naming the plan's shape.
func (r *Report) Summary() string {
	if len(r.Issues) == 0 {
		return fmt.Sprintf("Plan structure is consistent: %d phases, %d steps", r.phaseCount, r.stepCount)
	}
	return fmt.Sprintf("Found %d errors and %d warnings", r.ErrorCount(), r.WarningCount())
}

func (r *Report) add(sev Severity, category, location, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
	})
}
