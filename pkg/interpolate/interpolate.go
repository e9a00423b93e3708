// Package interpolate provides the piecewise-linear policy functions
// produced by the solver: continuous maps from a state level to a control,
// evaluated by linear interpolation between knots and linear extrapolation
// beyond them.
package interpolate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
)

// ErrConfig indicates an invalid knot sequence.
var ErrConfig = errors.New("invalid policy knots")

// PolicyFunction is a continuous piecewise-linear map from state to
// control, defined by an ordered sequence of knots with strictly
// increasing states. Outside the knot range it extrapolates linearly with
// the nearest segment's slope. Immutable once constructed.
type PolicyFunction struct {
	states   []float64
	controls []float64
}

// NewPolicyFunction fits a piecewise-linear function through the given
// knots. At least two knots are required and states must be strictly
// increasing.
func NewPolicyFunction(states, controls []float64) (*PolicyFunction, error) {
	if len(states) != len(controls) {
		return nil, fmt.Errorf("got %d states but %d controls: %w", len(states), len(controls), ErrConfig)
	}
	if len(states) < 2 {
		return nil, fmt.Errorf("need at least 2 knots, got %d: %w", len(states), ErrConfig)
	}
	if !mathutil.IsStrictlyIncreasing(states) {
		return nil, fmt.Errorf("states must be strictly increasing: %w", ErrConfig)
	}
	for i := range states {
		if !mathutil.IsFinite(states[i]) || !mathutil.IsFinite(controls[i]) {
			return nil, fmt.Errorf("knot %d is not finite: %w", i, ErrConfig)
		}
	}

	p := &PolicyFunction{
		states:   make([]float64, len(states)),
		controls: make([]float64, len(controls)),
	}
	copy(p.states, states)
	copy(p.controls, controls)
	return p, nil
}

// Evaluate returns the control at the given state by linear interpolation,
// extrapolating with the first or last segment's slope outside the knot
// range.
func (p *PolicyFunction) Evaluate(state float64) float64 {
	n := len(p.states)
	var i int
	switch {
	case state <= p.states[0]:
		i = 0
	case state >= p.states[n-1]:
		i = n - 2
	default:
		// Index of the segment whose right knot is the first state > input.
		i = sort.SearchFloat64s(p.states, state) - 1
		if p.states[i+1] == state {
			i++
			if i == n-1 {
				i = n - 2
			}
		}
	}
	slope := (p.controls[i+1] - p.controls[i]) / (p.states[i+1] - p.states[i])
	return p.controls[i] + slope*(state-p.states[i])
}

// Len returns the number of knots.
func (p *PolicyFunction) Len() int {
	return len(p.states)
}

// Knots returns copies of the knot state and control sequences.
func (p *PolicyFunction) Knots() (states, controls []float64) {
	states = make([]float64, len(p.states))
	controls = make([]float64, len(p.controls))
	copy(states, p.states)
	copy(controls, p.controls)
	return states, controls
}

// SharePolicyFunction maps an asset level to a portfolio share; results
// are confined to [0,1] even where extrapolation would leave the interval.
type SharePolicyFunction struct {
	pf *PolicyFunction
}

// NewSharePolicyFunction fits a share policy through the given knots. The
// control values themselves must already lie in [0,1].
func NewSharePolicyFunction(assets, shares []float64) (*SharePolicyFunction, error) {
	for i, s := range shares {
		if s < 0 || s > 1 {
			return nil, fmt.Errorf("share knot %d = %v lies outside [0,1]: %w", i, s, ErrConfig)
		}
	}
	pf, err := NewPolicyFunction(assets, shares)
	if err != nil {
		return nil, err
	}
	return &SharePolicyFunction{pf: pf}, nil
}

// Evaluate returns the portfolio share at the given asset level.
func (s *SharePolicyFunction) Evaluate(assets float64) float64 {
	return mathutil.Clamp(s.pf.Evaluate(assets), 0, 1)
}

// Len returns the number of knots.
func (s *SharePolicyFunction) Len() int {
	return s.pf.Len()
}

// Knots returns copies of the knot asset and share sequences.
func (s *SharePolicyFunction) Knots() (assets, shares []float64) {
	return s.pf.Knots()
}
