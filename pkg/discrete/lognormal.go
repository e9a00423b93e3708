package discrete

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NewLogNormal discretizes a lognormal distribution with the given
// log-space location and scale parameters.
func NewLogNormal(n int, mu, sigma float64) (*Approximation, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("lognormal sigma must be positive, got %v: %w", sigma, ErrConfig)
	}
	dist := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return New(n, dist.CDF, dist.Prob, dist.Quantile)
}

// NewMeanOneLogNormal discretizes a lognormal shock normalized to unit
// mean: mu = -sigma^2/2, the standard calibration for transitory income
// shocks.
func NewMeanOneLogNormal(n int, sigma float64) (*Approximation, error) {
	return NewLogNormal(n, -0.5*sigma*sigma, sigma)
}

// NewLogNormalFromMoments discretizes the lognormal distribution with the
// given mean and standard deviation in levels, the calibration used for
// risky gross returns with a target expected return and volatility.
func NewLogNormalFromMoments(n int, mean, stddev float64) (*Approximation, error) {
	if mean <= 0 {
		return nil, fmt.Errorf("lognormal mean must be positive, got %v: %w", mean, ErrConfig)
	}
	if stddev <= 0 {
		return nil, fmt.Errorf("lognormal stddev must be positive, got %v: %w", stddev, ErrConfig)
	}
	mu := math.Log(mean * mean / math.Sqrt(stddev*stddev+mean*mean))
	sigma := math.Sqrt(math.Log(1 + (stddev*stddev)/(mean*mean)))
	return NewLogNormal(n, mu, sigma)
}
