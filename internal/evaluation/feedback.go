package evaluation

import (
	"fmt"
	"strings"

	"github.com/forgelabs/planforge/internal/rubric"
)

// composeFeedback renders the human-readable verdict report. The
// approved form opens positively and still lists every score so the
// reader sees where the plan sits against each threshold; the rejected
// form leads with the blocking issues verbatim.
func composeFeedback(r *Result) string {
	var b strings.Builder

	if r.Approved {
		b.WriteString("Plan approved. The plan meets the quality bar across all criteria.\n\n")
	} else {
		b.WriteString("Plan rejected. The following issues must be resolved before approval:\n\n")
		for _, issue := range r.CriticalIssues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString("Scores:\n")
	for _, c := range rubric.Criteria() {
		s := r.Score(c)
		verdict := "pass"
		if !s.Passes() {
			verdict = "FAIL"
		}
		fmt.Fprintf(&b, "  %-16s %2d/10 (threshold %d, %s): %s\n",
			string(c), s.Score, s.PassThreshold, verdict, s.Feedback)
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	if r.Consistency != nil {
		fmt.Fprintf(&b, "\nStructure: %s\n", r.Consistency.Summary())
	}

	return b.String()
}
