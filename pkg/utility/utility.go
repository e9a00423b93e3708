// Package utility provides the CRRA utility primitive used throughout the
// solver: the utility level, its first derivative, and the inverse of the
// first derivative.
package utility

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain indicates an argument outside the domain of the utility
// function or one of its derivatives.
var ErrDomain = errors.New("argument outside utility domain")

// CRRA is a constant-relative-risk-aversion utility function. The risk
// aversion coefficient is fixed at construction; the log case is handled
// automatically.
type CRRA struct {
	riskAversion float64
}

// New creates a CRRA utility function with the given risk aversion
// coefficient, which must be strictly positive.
func New(riskAversion float64) (*CRRA, error) {
	if riskAversion <= 0 {
		return nil, fmt.Errorf("risk aversion must be positive, got %v: %w", riskAversion, ErrDomain)
	}
	return &CRRA{riskAversion: riskAversion}, nil
}

// RiskAversion returns the risk aversion coefficient.
func (u *CRRA) RiskAversion() float64 {
	return u.riskAversion
}

// Value returns the utility of consuming c. For risk aversion rho != 1 this
// is c^(1-rho)/(1-rho); at exactly rho = 1 it is log(c).
func (u *CRRA) Value(c float64) (float64, error) {
	if c <= 0 {
		return 0, fmt.Errorf("consumption %v is not positive: %w", c, ErrDomain)
	}
	if u.riskAversion == 1 {
		return math.Log(c), nil
	}
	return math.Pow(c, 1-u.riskAversion) / (1 - u.riskAversion), nil
}

// Marginal returns the marginal utility c^(-rho). It diverges to +Inf as c
// approaches zero from above; that divergence is what produces the natural
// borrowing limit in the solver.
func (u *CRRA) Marginal(c float64) (float64, error) {
	if c <= 0 {
		return 0, fmt.Errorf("consumption %v is not positive: %w", c, ErrDomain)
	}
	return math.Pow(c, -u.riskAversion), nil
}

// InverseMarginal returns the unique consumption level c such that
// Marginal(c) = m, namely m^(-1/rho).
func (u *CRRA) InverseMarginal(m float64) (float64, error) {
	if m <= 0 {
		return 0, fmt.Errorf("marginal utility %v is not positive: %w", m, ErrDomain)
	}
	return math.Pow(m, -1/u.riskAversion), nil
}
