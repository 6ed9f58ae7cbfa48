package consistency

import (
	"fmt"
	"sort"

	"github.com/forgelabs/planforge/internal/plan"
)

// DefaultExpectedPhases is the phase count a standard plan must have.
const DefaultExpectedPhases = 5

// Validate runs every structural check against the plan and returns
// the full defect list. It never returns an error: the upstream
// generator is unreliable and the validator's job is to characterize
// malformed input, not to crash on it.
//
// The single short-circuit: a plan with no phases collection at all
// (nil slice, i.e. the generator omitted the key entirely) yields one
// structure-category error and skips the remaining checks, since
// nothing else is computable without phases.
func Validate(p *plan.Plan, expectedPhases int) *Report {
	if expectedPhases <= 0 {
		expectedPhases = DefaultExpectedPhases
	}

	report := &Report{}
	if p == nil || p.Phases == nil {
		report.add(SeverityError, CategoryStructure, "plan.phases",
			"Plan has no phases collection")
		return report
	}

	report.phaseCount = len(p.Phases)
	report.stepCount = p.TotalSteps()

	checkPhaseCount(report, p, expectedPhases)
	checkPhaseNumbering(report, p)
	checkStepNumbering(report, p)
	checkDependencies(report, p)
	return report
}

// checkPhaseCount verifies the plan has exactly the expected number of
// phases.
func checkPhaseCount(r *Report, p *plan.Plan, expected int) {
	if len(p.Phases) != expected {
		r.add(SeverityError, CategoryPhaseCount, "plan.phases",
			"Expected %d phases but found %d", expected, len(p.Phases))
	}
}

// checkPhaseNumbering verifies phase indices run 1..N in order. Drifted
// phase numbering is recoverable, so mismatches are warnings.
func checkPhaseNumbering(r *Report, p *plan.Plan) {
	for i, ph := range p.Phases {
		if ph.Index != i+1 {
			r.add(SeverityWarning, CategoryPhaseOrder, fmt.Sprintf("Phase %d", i+1),
				"Expected phase index %d but found %d", i+1, ph.Index)
		}
	}
}

// checkStepNumbering walks phases in order, expecting step indices to
// form the contiguous global sequence 1..M. A drifted index is a
// warning (recoverable); a duplicated index is an error, because
// duplicates make dependency resolution ambiguous.
func checkStepNumbering(r *Report, p *plan.Plan) {
	expected := 1
	seen := make(map[int]int)
	for _, ph := range p.Phases {
		for _, st := range ph.Steps {
			if st.Index != expected {
				r.add(SeverityWarning, CategoryStepNumbering,
					fmt.Sprintf("Phase %d, Step %d", ph.Index, st.Index),
					"Expected step index %d but found %d", expected, st.Index)
			}
			seen[st.Index]++
			expected++
		}
	}

	duplicates := make([]int, 0)
	for idx, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, idx)
		}
	}
	sort.Ints(duplicates)
	for _, idx := range duplicates {
		r.add(SeverityError, CategoryStepNumbering, "plan.phases",
			"Step index %d appears %d times", idx, seen[idx])
	}
}

// checkDependencies verifies every dependency points at an existing
// step with a strictly smaller index. Because accepted dependencies
// always point backward in the global order, cycles are structurally
// impossible and no graph traversal is needed; acyclicity is a
// corollary of the ordering rule. (This holds only while the model
// keeps dependencies as index references under a total order — if
// unordered dependencies are ever allowed, a real cycle check becomes
// necessary.)
func checkDependencies(r *Report, p *plan.Plan) {
	valid := make(map[int]bool, p.TotalSteps())
	for _, ph := range p.Phases {
		for _, st := range ph.Steps {
			valid[st.Index] = true
		}
	}

	for _, ph := range p.Phases {
		for _, st := range ph.Steps {
			loc := fmt.Sprintf("Phase %d, Step %d", ph.Index, st.Index)
			for _, dep := range st.Dependencies {
				switch {
				case !valid[dep]:
					r.add(SeverityError, CategoryDependencies, loc,
						"Step %d references non-existent step %d", st.Index, dep)
				case dep >= st.Index:
					r.add(SeverityError, CategoryDependencies, loc,
						"Step %d references step %d which is not earlier than it", st.Index, dep)
				}
			}
		}
	}
}
