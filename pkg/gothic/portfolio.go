package gothic

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/lifecycle-egm/pkg/discrete"
	"github.com/iwvelando/lifecycle-egm/pkg/grids"
)

// ErrRootNotBracketed indicates the share first-order condition changed
// sign nowhere on the share grid while neither corner condition applied.
// Under decreasing marginal value of share this cannot happen; it is
// raised rather than silently defaulting.
var ErrRootNotBracketed = errors.New("share first-order condition not bracketed on share grid")

// PortfolioEngine extends an Engine with a second control, the portfolio
// share invested in a risky asset. It holds the base engine rather than
// reimplementing it: the share is resolved first, and consumption then
// follows the same inverse-marginal-utility formula with the stochastic
// portfolio return in place of the riskless one.
type PortfolioEngine struct {
	base      *Engine
	joint     *discrete.Joint
	shareGrid []float64
}

// NewPortfolioEngine creates a portfolio expectation engine. The joint
// distribution pairs the income shock with the risky gross return; the
// share grid must be strictly increasing and cover [0,1].
func NewPortfolioEngine(base *Engine, joint *discrete.Joint, shareGrid []float64) (*PortfolioEngine, error) {
	if base == nil {
		return nil, fmt.Errorf("base engine is required: %w", ErrConfig)
	}
	if joint == nil {
		return nil, fmt.Errorf("joint shock distribution is required: %w", ErrConfig)
	}
	if err := grids.ValidateShareGrid(shareGrid); err != nil {
		return nil, fmt.Errorf("share grid: %w", err)
	}
	grid := make([]float64, len(shareGrid))
	copy(grid, shareGrid)
	return &PortfolioEngine{base: base, joint: joint, shareGrid: grid}, nil
}

// Base returns the underlying single-control engine.
func (e *PortfolioEngine) Base() *Engine { return e.base }

// Joint returns the joint (income shock, risky return) distribution.
func (e *PortfolioEngine) Joint() *discrete.Joint { return e.joint }

// ShareGrid returns a copy of the share search grid.
func (e *PortfolioEngine) ShareGrid() []float64 {
	grid := make([]float64, len(e.shareGrid))
	copy(grid, e.shareGrid)
	return grid
}

// PortfolioReturn is the overall gross return on a portfolio holding the
// given share in the risky asset.
func (e *PortfolioEngine) PortfolioReturn(risky, share float64) float64 {
	return e.base.grossReturn + (risky-e.base.grossReturn)*share
}

// MarginalValueOfShare returns the derivative of the expected end-of-period
// value with respect to the risky share, holding post-decision assets
// fixed. At a = 0 the share is irrelevant and +Inf is returned as a
// sentinel; the share solver treats it as "choose share 0".
func (e *PortfolioEngine) MarginalValueOfShare(a, share float64, next Policy) (float64, error) {
	if a == 0 {
		return math.Inf(1), nil
	}
	base := e.base
	expected, err := e.joint.ExpectErr(func(shock, risky float64) (float64, error) {
		portfolio := e.PortfolioReturn(risky, share)
		resources := portfolio*a/base.growth + shock
		mu, err := base.u.Marginal(nextConsumption(next, resources))
		if err != nil {
			return 0, err
		}
		return (risky - base.grossReturn) * mu, nil
	})
	if err != nil {
		return 0, fmt.Errorf("marginal value of share at a=%v share=%v: %w", a, share, err)
	}
	return base.discount * a / base.growth * expected, nil
}

// OptimalShare solves the share first-order condition on [0,1] by
// evaluating it at every share-grid point and interpolating the zero
// crossing. Corners: negative post-decision assets carry no risky
// exposure; a positive marginal value at share 1 means full risky
// investment; a negative marginal value at share 0 means fully safe.
func (e *PortfolioEngine) OptimalShare(a float64, next Policy) (float64, error) {
	if a < 0 {
		return 0, nil
	}
	if a == 0 {
		// Sentinel case: the marginal value is +Inf everywhere, so there
		// is no finite root to search for.
		return 0, nil
	}

	focs := make([]float64, len(e.shareGrid))
	for i, share := range e.shareGrid {
		foc, err := e.MarginalValueOfShare(a, share, next)
		if err != nil {
			return 0, err
		}
		focs[i] = foc
	}

	last := len(focs) - 1
	if focs[last] > 0 {
		return 1, nil
	}
	if focs[0] < 0 {
		return 0, nil
	}
	for i := 0; i < last; i++ {
		if focs[i] >= 0 && focs[i+1] <= 0 {
			bot, top := focs[i], focs[i+1]
			alpha := 1 - top/(top-bot)
			return (1-alpha)*e.shareGrid[i] + alpha*e.shareGrid[i+1], nil
		}
	}
	return 0, fmt.Errorf("optimal share at a=%v: %w", a, ErrRootNotBracketed)
}

// ExpectedMarginalValue returns the derivative of the expected
// end-of-period value with respect to post-decision assets at a fixed
// share. The stochastic portfolio return replaces the riskless return
// throughout, which also moves the chain-rule return factor inside the
// expectation.
func (e *PortfolioEngine) ExpectedMarginalValue(a, share float64, next Policy) (float64, error) {
	base := e.base
	rho := base.u.RiskAversion()
	scale := base.discount * math.Pow(base.growth, -rho)
	expected, err := e.joint.ExpectErr(func(shock, risky float64) (float64, error) {
		portfolio := e.PortfolioReturn(risky, share)
		resources := portfolio*a/base.growth + shock
		mu, err := base.u.Marginal(nextConsumption(next, resources))
		if err != nil {
			return 0, err
		}
		return portfolio * mu, nil
	})
	if err != nil {
		return 0, fmt.Errorf("expected marginal value at a=%v share=%v: %w", a, share, err)
	}
	return scale * expected, nil
}

// ConsumptionForShare applies the endogenous-gridpoints step at a fixed
// share: the inverse marginal utility of the expected marginal value.
func (e *PortfolioEngine) ConsumptionForShare(a, share float64, next Policy) (float64, error) {
	mv, err := e.ExpectedMarginalValue(a, share, next)
	if err != nil {
		return 0, err
	}
	c, err := e.base.u.InverseMarginal(mv)
	if err != nil {
		return 0, fmt.Errorf("implied consumption at a=%v share=%v: %w", a, share, err)
	}
	return c, nil
}

// ImpliedConsumption resolves the optimal share first and then applies
// the same consumption formula as the single-control engine with the
// portfolio return in place of the riskless one.
func (e *PortfolioEngine) ImpliedConsumption(a float64, next Policy) (float64, error) {
	share, err := e.OptimalShare(a, next)
	if err != nil {
		return 0, err
	}
	return e.ConsumptionForShare(a, share, next)
}
