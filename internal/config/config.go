// Package config defines the data structures related to configuration and
// includes functions for loading and validating the model config.
package config

import (
	"fmt"

	"github.com/iwvelando/lifecycle-egm/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for lifecycle-egm.
type Configuration struct {
	Model       Model
	IncomeShock IncomeShock      `yaml:"incomeShock"`
	AssetGrid   AssetGrid        `yaml:"assetGrid"`
	Portfolio   *PortfolioConfig `yaml:"portfolio,omitempty"`
	Logging     LoggingConfig    `yaml:"logging,omitempty"`
	Output      OutputConfig     `yaml:"output,omitempty"`
}

// Model holds the preference and return parameters of the household
// problem.
type Model struct {
	RiskAversion   float64 `yaml:"riskAversion"`
	DiscountFactor float64 `yaml:"discountFactor"`
	GrowthFactor   float64 `yaml:"growthFactor"`
	GrossReturn    float64 `yaml:"grossReturn"`
	Horizon        int
	Constraint     string `yaml:"constraint,omitempty"` // natural, artificial-at-zero
	Workers        int    `yaml:"workers,omitempty"`
}

// IncomeShock calibrates the discretized mean-one lognormal income shock.
type IncomeShock struct {
	Sigma float64
	Nodes int `yaml:"nodes,omitempty"`
}

// AssetGrid describes the post-decision asset grid shared by every
// period.
type AssetGrid struct {
	Min         float64
	Max         float64
	Size        int
	Kind        string `yaml:"kind,omitempty"` // linspace, exp-mult
	TimesToNest int    `yaml:"timesToNest,omitempty"`
}

// PortfolioConfig enables the risky-share extension. The risky return is
// calibrated lognormal from its target mean and standard deviation; the
// mean may be given directly or as a premium over the safe gross return.
type PortfolioConfig struct {
	EquityPremium float64 `yaml:"equityPremium,omitempty"`
	RiskyMean     float64 `yaml:"riskyMean,omitempty"`
	RiskyStdDev   float64 `yaml:"riskyStdDev"`
	ReturnNodes   int     `yaml:"returnNodes,omitempty"`
	ShareGridSize int     `yaml:"shareGridSize,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ApplyDefaults fills every optional field that was left unset.
func (c *Configuration) ApplyDefaults() {
	if c.Model.Constraint == "" {
		c.Model.Constraint = constants.ConstraintArtificialAtZero
	}
	if c.Model.Workers == 0 {
		c.Model.Workers = 1
	}
	if c.IncomeShock.Nodes == 0 {
		c.IncomeShock.Nodes = constants.DefaultShockNodes
	}
	if c.AssetGrid.Kind == "" {
		c.AssetGrid.Kind = constants.GridKindExpMult
	}
	if c.AssetGrid.TimesToNest == 0 {
		c.AssetGrid.TimesToNest = constants.DefaultGridNesting
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Portfolio != nil {
		if c.Portfolio.ReturnNodes == 0 {
			c.Portfolio.ReturnNodes = constants.DefaultShockNodes
		}
		if c.Portfolio.ShareGridSize == 0 {
			c.Portfolio.ShareGridSize = constants.DefaultShareGridSize
		}
		if c.Portfolio.RiskyMean == 0 {
			c.Portfolio.RiskyMean = c.Model.GrossReturn + c.Portfolio.EquityPremium
		}
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Hard errors surface later when the model objects
// are constructed; warnings flag parameterizations that are legal but
// probably not what the user wanted.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Model.DiscountFactor >= 1.0 {
		warnings = append(warnings,
			fmt.Sprintf("discount factor %.4f does not discount the future; finite-horizon solves still terminate but policies may be extreme", c.Model.DiscountFactor))
	}
	if c.Model.GrossReturn < 1.0 {
		warnings = append(warnings,
			fmt.Sprintf("gross return %.4f implies a negative interest rate", c.Model.GrossReturn))
	}
	if c.Model.Horizon > 1000 {
		warnings = append(warnings,
			fmt.Sprintf("horizon %d is unusually long; expect a slow solve", c.Model.Horizon))
	}
	if c.IncomeShock.Sigma > 1.0 {
		warnings = append(warnings,
			fmt.Sprintf("income shock sigma %.4f is unusually volatile", c.IncomeShock.Sigma))
	}
	if c.IncomeShock.Nodes > 0 && c.IncomeShock.Nodes < 3 {
		warnings = append(warnings,
			fmt.Sprintf("income shock with %d node(s) barely resolves the distribution", c.IncomeShock.Nodes))
	}
	if c.AssetGrid.Size > 0 && c.AssetGrid.Size < 5 {
		warnings = append(warnings,
			fmt.Sprintf("asset grid of size %d will give a coarse policy", c.AssetGrid.Size))
	}
	if c.Portfolio != nil {
		if c.Portfolio.RiskyMean != 0 && c.Portfolio.EquityPremium != 0 {
			warnings = append(warnings,
				"both riskyMean and equityPremium are set; riskyMean takes precedence")
		}
		if c.Portfolio.RiskyMean != 0 && c.Portfolio.RiskyMean <= c.Model.GrossReturn {
			warnings = append(warnings,
				fmt.Sprintf("risky mean return %.4f does not exceed the safe return %.4f; the optimal share is 0 everywhere", c.Portfolio.RiskyMean, c.Model.GrossReturn))
		}
	}

	return warnings
}
