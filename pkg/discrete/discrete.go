// Package discrete converts continuous scalar probability distributions
// into finite-support equiprobable approximations and exposes expectation
// operators over them. These discretizations are the only integration
// mechanism used by the solver.
package discrete

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/iwvelando/lifecycle-egm/pkg/constants"
	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
)

// ErrConfig indicates an invalid discretization request.
var ErrConfig = errors.New("invalid discretization configuration")

// Node is a single mass point of a discretized distribution.
type Node struct {
	Value       float64
	Probability float64
}

// Approximation is an N-point equiprobable approximation to a continuous
// scalar distribution. Node i carries probability 1/N and the conditional
// mean of the source variable over the i-th equiprobable quantile bin.
// Immutable once constructed.
type Approximation struct {
	nodes []Node
}

// New discretizes the distribution described by (cdf, pdf, invCDF) into n
// equiprobable nodes. The bin conditional means are obtained by
// Gauss-Legendre quadrature of the quantile function over each bin of the
// unit interval, which is the change of variables x = invCDF(p) applied to
// the integral of x*pdf(x) over the bin in the variable's own support.
func New(n int, cdf, pdf, invCDF func(float64) float64) (*Approximation, error) {
	if n < 1 {
		return nil, fmt.Errorf("node count must be at least 1, got %d: %w", n, ErrConfig)
	}
	if cdf == nil || pdf == nil || invCDF == nil {
		return nil, fmt.Errorf("cdf, pdf, and inverse cdf are all required: %w", ErrConfig)
	}

	// The quantile function and CDF must be mutually consistent, and the
	// density must be positive where mass lives; check once at the median.
	median := invCDF(0.5)
	if !mathutil.IsFinite(median) ||
		!mathutil.WithinTolerance(cdf(median), 0.5, constants.DistributionCheckTolerance) ||
		pdf(median) <= 0 {
		return nil, fmt.Errorf("cdf, pdf, and inverse cdf disagree at the median: %w", ErrConfig)
	}

	nodes := make([]Node, n)
	prob := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		lo := float64(i) / float64(n)
		hi := float64(i+1) / float64(n)
		// Gauss-Legendre nodes are interior to (lo, hi), so unbounded
		// supports (invCDF(1) = +Inf) never get evaluated at the endpoint.
		mean := quad.Fixed(invCDF, lo, hi, constants.QuadratureNodes, nil, 0) / prob
		if !mathutil.IsFinite(mean) {
			return nil, fmt.Errorf("bin %d conditional mean is not finite: %w", i, ErrConfig)
		}
		nodes[i] = Node{Value: mean, Probability: prob}
	}

	// Values inherit monotonicity from the quantile function.
	for i := 1; i < n; i++ {
		if nodes[i].Value <= nodes[i-1].Value {
			return nil, fmt.Errorf("bin means are not strictly increasing at node %d: %w", i, ErrConfig)
		}
	}

	return &Approximation{nodes: nodes}, nil
}

// Len returns the number of mass points.
func (d *Approximation) Len() int {
	return len(d.nodes)
}

// Nodes returns a copy of the mass points in increasing value order.
func (d *Approximation) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Min returns the smallest mass-point value, i.e. the worst discretized
// shock realization.
func (d *Approximation) Min() float64 {
	return d.nodes[0].Value
}

// Mean returns the probability-weighted mean of the mass points.
func (d *Approximation) Mean() float64 {
	return d.Expect(func(x float64) float64 { return x })
}

// Expect returns the expectation of f over the discretized distribution,
// the weighted sum over all mass points. Cost is O(N) evaluations of f.
func (d *Approximation) Expect(f func(float64) float64) float64 {
	sum := 0.0
	for _, node := range d.nodes {
		sum += node.Probability * f(node.Value)
	}
	return sum
}

// ExpectErr is Expect for integrands that can fail; the first failure
// aborts the summation.
func (d *Approximation) ExpectErr(f func(float64) (float64, error)) (float64, error) {
	sum := 0.0
	for _, node := range d.nodes {
		v, err := f(node.Value)
		if err != nil {
			return 0, err
		}
		sum += node.Probability * v
	}
	return sum, nil
}

// ProbabilityMass returns the total probability across all mass points,
// which should be 1 up to accumulated rounding.
func (d *Approximation) ProbabilityMass() float64 {
	sum := 0.0
	for _, node := range d.nodes {
		sum += node.Probability
	}
	return sum
}

// checkMass guards against a probability vector drifting from 1; used by
// the joint construction below.
func (d *Approximation) checkMass() error {
	if math.Abs(d.ProbabilityMass()-1) > constants.ProbabilityTolerance {
		return fmt.Errorf("probabilities sum to %v, not 1: %w", d.ProbabilityMass(), ErrConfig)
	}
	return nil
}
