package discrete

import "fmt"

// Joint is the cross-product of two independent discretized distributions.
// The product probabilities are never materialized; expectations iterate
// over the full outer product.
type Joint struct {
	first  *Approximation
	second *Approximation
}

// NewJoint combines two independent discretized distributions.
func NewJoint(first, second *Approximation) (*Joint, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("both marginal distributions are required: %w", ErrConfig)
	}
	if err := first.checkMass(); err != nil {
		return nil, fmt.Errorf("first marginal: %w", err)
	}
	if err := second.checkMass(); err != nil {
		return nil, fmt.Errorf("second marginal: %w", err)
	}
	return &Joint{first: first, second: second}, nil
}

// First returns the first marginal distribution.
func (j *Joint) First() *Approximation {
	return j.first
}

// Second returns the second marginal distribution.
func (j *Joint) Second() *Approximation {
	return j.second
}

// Expect returns the expectation of f over the outer product of the two
// marginals. Cost is O(N*M) evaluations of f.
func (j *Joint) Expect(f func(x, y float64) float64) float64 {
	sum := 0.0
	for _, a := range j.first.nodes {
		for _, b := range j.second.nodes {
			sum += a.Probability * b.Probability * f(a.Value, b.Value)
		}
	}
	return sum
}

// ExpectErr is Expect for integrands that can fail; the first failure
// aborts the summation.
func (j *Joint) ExpectErr(f func(x, y float64) (float64, error)) (float64, error) {
	sum := 0.0
	for _, a := range j.first.nodes {
		for _, b := range j.second.nodes {
			v, err := f(a.Value, b.Value)
			if err != nil {
				return 0, err
			}
			sum += a.Probability * b.Probability * v
		}
	}
	return sum, nil
}
