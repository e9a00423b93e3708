package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/iwvelando/lifecycle-egm/pkg/constants"
	"github.com/iwvelando/lifecycle-egm/pkg/gothic"
	"github.com/iwvelando/lifecycle-egm/pkg/grids"
	"github.com/iwvelando/lifecycle-egm/pkg/interpolate"
	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
)

// ErrConfig indicates invalid solver options.
var ErrConfig = errors.New("invalid solver options")

// ConstraintMode selects which borrowing constraint binds the policy.
type ConstraintMode string

const (
	// ConstraintNatural keeps only the self-imposed natural borrowing
	// limit implied by the worst income shock.
	ConstraintNatural ConstraintMode = constants.ConstraintNatural

	// ConstraintArtificialAtZero additionally forbids any borrowing.
	ConstraintArtificialAtZero ConstraintMode = constants.ConstraintArtificialAtZero
)

// ParseConstraintMode converts a configuration string into a
// ConstraintMode; the empty string defaults to the artificial constraint.
func ParseConstraintMode(value string) (ConstraintMode, error) {
	switch value {
	case "":
		return ConstraintArtificialAtZero, nil
	case constants.ConstraintNatural:
		return ConstraintNatural, nil
	case constants.ConstraintArtificialAtZero:
		return ConstraintArtificialAtZero, nil
	}
	return "", fmt.Errorf("unknown constraint mode %q: %w", value, ErrConfig)
}

// Options configures one backward-induction solve.
type Options struct {
	// Horizon is the number of decision periods T.
	Horizon int

	// AssetGrid is the ordered, non-negative post-decision asset grid
	// shared by every period.
	AssetGrid []float64

	// Constraint selects the borrowing-constraint regime.
	Constraint ConstraintMode

	// Workers bounds the number of goroutines sweeping one period's grid;
	// values below 2 solve sequentially.
	Workers int
}

func (o Options) validate() error {
	if o.Horizon < 1 {
		return fmt.Errorf("horizon must be at least 1, got %d: %w", o.Horizon, ErrConfig)
	}
	if err := grids.ValidateAssetGrid(o.AssetGrid); err != nil {
		return err
	}
	switch o.Constraint {
	case ConstraintNatural, ConstraintArtificialAtZero:
	default:
		return fmt.Errorf("unknown constraint mode %q: %w", o.Constraint, ErrConfig)
	}
	return nil
}

// borrowingLimit is the lower end of the endogenous cash-on-hand domain:
// the natural limit is the most negative asset level that keeps
// next-period resources non-negative under the worst discretized shock.
func borrowingLimit(engine *gothic.Engine, mode ConstraintMode) float64 {
	if mode == ConstraintArtificialAtZero {
		return 0
	}
	return -engine.Shocks().Min() * engine.GrowthFactor() / engine.GrossReturn()
}

// Solve runs the single-control backward induction over the whole
// horizon. Period T-1 is solved against the trivial spend-everything
// terminal rule; every earlier period is solved against the policy stored
// for the following period.
func Solve(logger *zap.Logger, engine *gothic.Engine, opts Options) (*LifeCycleSolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		return nil, fmt.Errorf("engine is required: %w", ErrConfig)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	limit := borrowingLimit(engine, opts.Constraint)
	solution := newLifeCycleSolution(opts.Horizon)

	var next gothic.Policy
	for t := opts.Horizon - 1; t >= 0; t-- {
		policy, err := solvePeriod(engine, opts, limit, next)
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", t, err)
		}
		if err := solution.store(&PeriodSolution{Period: t, Consumption: policy}); err != nil {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("solved consumption policy for period %d", t),
			zap.String("op", "lifecycle.Solve"),
			zap.Int("knots", policy.Len()),
		)
		next = policy
	}

	return solution, nil
}

// solvePeriod sweeps the asset grid once, forms the endogenous
// cash-on-hand grid, and fits the period's consumption policy with the
// constraint-boundary knot prepended.
func solvePeriod(engine *gothic.Engine, opts Options, limit float64, next gothic.Policy) (*interpolate.PolicyFunction, error) {
	states := make([]float64, len(opts.AssetGrid)+1)
	controls := make([]float64, len(opts.AssetGrid)+1)

	// At exactly the binding constraint marginal utility diverges and
	// consumption collapses to zero; the knot is inserted analytically
	// rather than trusting interpolation near the singularity.
	states[0] = limit
	controls[0] = 0

	err := sweep(opts.AssetGrid, opts.Workers, func(i int, a float64) error {
		c, err := engine.ImpliedConsumption(a, next)
		if err != nil {
			return err
		}
		m := c + a
		if opts.Constraint == ConstraintArtificialAtZero {
			c = mathutil.Min(c, m)
		}
		states[i+1] = m
		controls[i+1] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	policy, err := interpolate.NewPolicyFunction(states, controls)
	if err != nil {
		return nil, fmt.Errorf("fitting consumption policy: %w", err)
	}
	return policy, nil
}

// SolvePortfolio runs the two-control backward induction: at every grid
// point the optimal risky share is resolved first and consumption follows
// from the same first-order condition under the portfolio return. The
// share solved at each positive asset level is fitted into a second
// policy; the zero-asset corner is excluded from that fit.
func SolvePortfolio(logger *zap.Logger, engine *gothic.PortfolioEngine, opts Options) (*LifeCycleSolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		return nil, fmt.Errorf("engine is required: %w", ErrConfig)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	positive := 0
	for _, a := range opts.AssetGrid {
		if a > 0 {
			positive++
		}
	}
	if positive < 2 {
		return nil, fmt.Errorf("share policy needs at least 2 positive asset grid points, got %d: %w",
			positive, ErrConfig)
	}

	limit := borrowingLimit(engine.Base(), opts.Constraint)
	solution := newLifeCycleSolution(opts.Horizon)

	var next gothic.Policy
	for t := opts.Horizon - 1; t >= 0; t-- {
		consumption, share, err := solvePortfolioPeriod(engine, opts, limit, next)
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", t, err)
		}
		if err := solution.store(&PeriodSolution{Period: t, Consumption: consumption, Share: share}); err != nil {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("solved consumption and share policies for period %d", t),
			zap.String("op", "lifecycle.SolvePortfolio"),
			zap.Int("knots", consumption.Len()),
		)
		next = consumption
	}

	return solution, nil
}

func solvePortfolioPeriod(engine *gothic.PortfolioEngine, opts Options, limit float64, next gothic.Policy) (*interpolate.PolicyFunction, *interpolate.SharePolicyFunction, error) {
	states := make([]float64, len(opts.AssetGrid)+1)
	controls := make([]float64, len(opts.AssetGrid)+1)
	shares := make([]float64, len(opts.AssetGrid))

	states[0] = limit
	controls[0] = 0

	err := sweep(opts.AssetGrid, opts.Workers, func(i int, a float64) error {
		share, err := engine.OptimalShare(a, next)
		if err != nil {
			return err
		}
		c, err := engine.ConsumptionForShare(a, share, next)
		if err != nil {
			return err
		}
		m := c + a
		if opts.Constraint == ConstraintArtificialAtZero {
			c = mathutil.Min(c, m)
		}
		states[i+1] = m
		controls[i+1] = c
		shares[i] = share
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	consumption, err := interpolate.NewPolicyFunction(states, controls)
	if err != nil {
		return nil, nil, fmt.Errorf("fitting consumption policy: %w", err)
	}

	// The share is a corner case at zero post-decision assets, so that
	// grid point does not anchor the share policy.
	var shareAssets, shareControls []float64
	for i, a := range opts.AssetGrid {
		if a == 0 {
			continue
		}
		shareAssets = append(shareAssets, a)
		shareControls = append(shareControls, shares[i])
	}
	sharePolicy, err := interpolate.NewSharePolicyFunction(shareAssets, shareControls)
	if err != nil {
		return nil, nil, fmt.Errorf("fitting share policy: %w", err)
	}

	return consumption, sharePolicy, nil
}

// sweep evaluates fn at every grid index. Grid points are independent of
// each other, so with more than one worker the sweep is distributed
// across goroutines; each index is written by exactly one worker and the
// first error in grid order wins.
func sweep(grid []float64, workers int, fn func(i int, a float64) error) error {
	if workers > len(grid) {
		workers = len(grid)
	}
	if workers < 2 {
		for i, a := range grid {
			if err := fn(i, a); err != nil {
				return fmt.Errorf("grid point %d (a=%v): %w", i, a, err)
			}
		}
		return nil
	}

	errs := make([]error, len(grid))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for i := start; i < len(grid); i += workers {
				errs[i] = fn(i, grid[i])
			}
		}(w)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("grid point %d (a=%v): %w", i, grid[i], err)
		}
	}
	return nil
}
