// Package gothic implements the expectation layer of the solver: the
// discounted end-of-period expected value, expected marginal value, and
// the endogenously implied consumption as functions of post-decision
// assets, taken over a discretized shock distribution.
package gothic

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/lifecycle-egm/pkg/discrete"
	"github.com/iwvelando/lifecycle-egm/pkg/utility"
)

// ErrConfig indicates an invalid engine configuration.
var ErrConfig = errors.New("invalid engine configuration")

// Policy is a next-period consumption rule: given next-period cash on
// hand, it returns next-period consumption. A nil Policy means the
// trivial terminal rule of spending everything.
type Policy interface {
	Evaluate(state float64) float64
}

// Engine computes discounted expectations of next-period value and
// marginal value over a single income-shock distribution. All operations
// are pure functions of post-decision assets and an optional next-period
// consumption policy; the engine itself is immutable.
type Engine struct {
	u           *utility.CRRA
	discount    float64
	growth      float64
	grossReturn float64
	shocks      *discrete.Approximation
}

// NewEngine creates an expectation engine. The discount factor must lie
// in (0,1]; the growth factor and gross return must be positive.
func NewEngine(u *utility.CRRA, discount, growthFactor, grossReturn float64, shocks *discrete.Approximation) (*Engine, error) {
	if u == nil {
		return nil, fmt.Errorf("utility function is required: %w", ErrConfig)
	}
	if discount <= 0 || discount > 1 {
		return nil, fmt.Errorf("discount factor %v must lie in (0,1]: %w", discount, ErrConfig)
	}
	if growthFactor <= 0 {
		return nil, fmt.Errorf("growth factor %v must be positive: %w", growthFactor, ErrConfig)
	}
	if grossReturn <= 0 {
		return nil, fmt.Errorf("gross return %v must be positive: %w", grossReturn, ErrConfig)
	}
	if shocks == nil {
		return nil, fmt.Errorf("shock distribution is required: %w", ErrConfig)
	}
	return &Engine{
		u:           u,
		discount:    discount,
		growth:      growthFactor,
		grossReturn: grossReturn,
		shocks:      shocks,
	}, nil
}

// Utility returns the engine's utility function.
func (e *Engine) Utility() *utility.CRRA { return e.u }

// Discount returns the time discount factor.
func (e *Engine) Discount() float64 { return e.discount }

// GrowthFactor returns the permanent income growth factor.
func (e *Engine) GrowthFactor() float64 { return e.growth }

// GrossReturn returns the riskless gross interest factor.
func (e *Engine) GrossReturn() float64 { return e.grossReturn }

// Shocks returns the discretized income-shock distribution.
func (e *Engine) Shocks() *discrete.Approximation { return e.shocks }

// TerminalValue is the value of spending everything, used only to seed
// the final period.
func (e *Engine) TerminalValue(a float64) (float64, error) {
	return e.u.Value(a)
}

// nextConsumption maps a next-period resource level to next-period
// consumption under the given policy, or the spend-everything terminal
// rule when next is nil.
func nextConsumption(next Policy, resources float64) float64 {
	if next == nil {
		return resources
	}
	return next.Evaluate(resources)
}

// ExpectedValue returns the discounted expected next-period value of
// holding post-decision assets a, the gothic value function.
func (e *Engine) ExpectedValue(a float64, next Policy) (float64, error) {
	rho := e.u.RiskAversion()
	scale := e.discount * math.Pow(e.growth, 1-rho)
	expected, err := e.shocks.ExpectErr(func(shock float64) (float64, error) {
		resources := e.grossReturn/e.growth*a + shock
		return e.u.Value(nextConsumption(next, resources))
	})
	if err != nil {
		return 0, fmt.Errorf("expected value at a=%v: %w", a, err)
	}
	return scale * expected, nil
}

// ExpectedMarginalValue returns the derivative of the gothic value
// function with respect to post-decision assets, the discounted expected
// next-period marginal utility scaled by the return chain rule.
func (e *Engine) ExpectedMarginalValue(a float64, next Policy) (float64, error) {
	rho := e.u.RiskAversion()
	scale := e.discount * e.grossReturn * math.Pow(e.growth, -rho)
	expected, err := e.shocks.ExpectErr(func(shock float64) (float64, error) {
		resources := e.grossReturn/e.growth*a + shock
		return e.u.Marginal(nextConsumption(next, resources))
	})
	if err != nil {
		return 0, fmt.Errorf("expected marginal value at a=%v: %w", a, err)
	}
	return scale * expected, nil
}

// ImpliedConsumption is the endogenous-gridpoints step: by the first-order
// condition u'(c) = 𝔳'(a), the consumption associated with post-decision
// assets a is the inverse marginal utility of the expected marginal value,
// obtained with no search.
func (e *Engine) ImpliedConsumption(a float64, next Policy) (float64, error) {
	mv, err := e.ExpectedMarginalValue(a, next)
	if err != nil {
		return 0, err
	}
	c, err := e.u.InverseMarginal(mv)
	if err != nil {
		return 0, fmt.Errorf("implied consumption at a=%v: %w", a, err)
	}
	return c, nil
}
