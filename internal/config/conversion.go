package config

import (
	"fmt"

	"github.com/iwvelando/lifecycle-egm/internal/lifecycle"
	"github.com/iwvelando/lifecycle-egm/pkg/constants"
	"github.com/iwvelando/lifecycle-egm/pkg/discrete"
	"github.com/iwvelando/lifecycle-egm/pkg/gothic"
	"github.com/iwvelando/lifecycle-egm/pkg/grids"
	"github.com/iwvelando/lifecycle-egm/pkg/utility"
)

// BuildEngine constructs the expectation engine for the single-control
// problem from the loaded configuration.
func (c *Configuration) BuildEngine() (*gothic.Engine, error) {
	u, err := utility.New(c.Model.RiskAversion)
	if err != nil {
		return nil, fmt.Errorf("utility: %w", err)
	}
	shocks, err := discrete.NewMeanOneLogNormal(c.IncomeShock.Nodes, c.IncomeShock.Sigma)
	if err != nil {
		return nil, fmt.Errorf("income shock: %w", err)
	}
	engine, err := gothic.NewEngine(u, c.Model.DiscountFactor, c.Model.GrowthFactor, c.Model.GrossReturn, shocks)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return engine, nil
}

// BuildPortfolioEngine constructs the two-control engine; the
// configuration must carry a portfolio block.
func (c *Configuration) BuildPortfolioEngine() (*gothic.PortfolioEngine, error) {
	if c.Portfolio == nil {
		return nil, fmt.Errorf("portfolio section is not configured")
	}
	base, err := c.BuildEngine()
	if err != nil {
		return nil, err
	}

	riskyMean := c.Portfolio.RiskyMean
	if riskyMean == 0 {
		riskyMean = c.Model.GrossReturn + c.Portfolio.EquityPremium
	}
	returns, err := discrete.NewLogNormalFromMoments(c.Portfolio.ReturnNodes, riskyMean, c.Portfolio.RiskyStdDev)
	if err != nil {
		return nil, fmt.Errorf("risky return: %w", err)
	}
	joint, err := discrete.NewJoint(base.Shocks(), returns)
	if err != nil {
		return nil, fmt.Errorf("joint shock distribution: %w", err)
	}

	shareGrid, err := grids.Linspace(0, 1, c.Portfolio.ShareGridSize)
	if err != nil {
		return nil, fmt.Errorf("share grid: %w", err)
	}
	engine, err := gothic.NewPortfolioEngine(base, joint, shareGrid)
	if err != nil {
		return nil, fmt.Errorf("portfolio engine: %w", err)
	}
	return engine, nil
}

// BuildAssetGrid constructs the post-decision asset grid named by the
// configuration.
func (c *Configuration) BuildAssetGrid() ([]float64, error) {
	switch c.AssetGrid.Kind {
	case constants.GridKindLinspace:
		return grids.Linspace(c.AssetGrid.Min, c.AssetGrid.Max, c.AssetGrid.Size)
	case constants.GridKindExpMult, "":
		return grids.ExpMult(c.AssetGrid.Min, c.AssetGrid.Max, c.AssetGrid.Size, c.AssetGrid.TimesToNest)
	}
	return nil, fmt.Errorf("unknown asset grid kind %q", c.AssetGrid.Kind)
}

// SolverOptions assembles lifecycle.Options from the configuration.
func (c *Configuration) SolverOptions() (lifecycle.Options, error) {
	mode, err := lifecycle.ParseConstraintMode(c.Model.Constraint)
	if err != nil {
		return lifecycle.Options{}, err
	}
	grid, err := c.BuildAssetGrid()
	if err != nil {
		return lifecycle.Options{}, fmt.Errorf("asset grid: %w", err)
	}
	return lifecycle.Options{
		Horizon:    c.Model.Horizon,
		AssetGrid:  grid,
		Constraint: mode,
		Workers:    c.Model.Workers,
	}, nil
}
