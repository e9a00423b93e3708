// Package lifecycle implements the backward-induction solver: it sweeps
// the post-decision asset grid period by period from the final decision
// period to the first, turning expected marginal values into
// piecewise-linear consumption (and portfolio share) policies via the
// endogenous gridpoints method.
package lifecycle

import (
	"fmt"

	"github.com/iwvelando/lifecycle-egm/pkg/interpolate"
)

// PeriodSolution holds the policies solved for exactly one period. Share
// is nil for the single-control model. Immutable once stored.
type PeriodSolution struct {
	Period      int
	Consumption *interpolate.PolicyFunction
	Share       *interpolate.SharePolicyFunction
}

// LifeCycleSolution maps period indices 0..T-1 to period solutions. It is
// populated strictly in decreasing period order and is fully populated
// only after period 0 is solved.
type LifeCycleSolution struct {
	periods []*PeriodSolution
}

func newLifeCycleSolution(horizon int) *LifeCycleSolution {
	return &LifeCycleSolution{periods: make([]*PeriodSolution, horizon)}
}

// store records a period solution; the slot must be empty.
func (s *LifeCycleSolution) store(p *PeriodSolution) error {
	if p.Period < 0 || p.Period >= len(s.periods) {
		return fmt.Errorf("period %d outside horizon %d", p.Period, len(s.periods))
	}
	if s.periods[p.Period] != nil {
		return fmt.Errorf("period %d solved twice", p.Period)
	}
	s.periods[p.Period] = p
	return nil
}

// Horizon returns the number of periods.
func (s *LifeCycleSolution) Horizon() int {
	return len(s.periods)
}

// Period returns the solution for period t. Reading a period before it
// has been solved is an error; the backward recursion only ever reads
// period t+1 after storing it.
func (s *LifeCycleSolution) Period(t int) (*PeriodSolution, error) {
	if t < 0 || t >= len(s.periods) {
		return nil, fmt.Errorf("period %d outside horizon %d", t, len(s.periods))
	}
	if s.periods[t] == nil {
		return nil, fmt.Errorf("period %d not yet solved", t)
	}
	return s.periods[t], nil
}
