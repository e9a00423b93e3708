package utility

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		riskAversion float64
		expectErr    bool
	}{
		{"Standard risk aversion", 2.0, false},
		{"Log utility", 1.0, false},
		{"High risk aversion", 6.0, false},
		{"Fractional risk aversion", 0.5, false},
		{"Zero risk aversion", 0.0, true},
		{"Negative risk aversion", -1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := New(tt.riskAversion)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("New(%v) expected error, got nil", tt.riskAversion)
				}
				if !errors.Is(err, ErrDomain) {
					t.Errorf("New(%v) error = %v, expected ErrDomain", tt.riskAversion, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%v) unexpected error: %v", tt.riskAversion, err)
			}
			if u.RiskAversion() != tt.riskAversion {
				t.Errorf("RiskAversion() = %v, expected %v", u.RiskAversion(), tt.riskAversion)
			}
		})
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name         string
		riskAversion float64
		c            float64
		expected     float64
	}{
		{"rho=2 at c=1", 2.0, 1.0, -1.0},
		{"rho=2 at c=2", 2.0, 2.0, -0.5},
		{"Log utility at c=1", 1.0, 1.0, 0.0},
		{"Log utility at c=e", 1.0, math.E, 1.0},
		{"rho=0.5 at c=4", 0.5, 4.0, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := New(tt.riskAversion)
			if err != nil {
				t.Fatalf("New(%v) unexpected error: %v", tt.riskAversion, err)
			}
			got, err := u.Value(tt.c)
			if err != nil {
				t.Fatalf("Value(%v) unexpected error: %v", tt.c, err)
			}
			if !mathutil.WithinTolerance(got, tt.expected, 1e-12) {
				t.Errorf("Value(%v) = %v, expected %v", tt.c, got, tt.expected)
			}
		})
	}
}

func TestValueDomainErrors(t *testing.T) {
	u, err := New(2.0)
	if err != nil {
		t.Fatalf("New unexpected error: %v", err)
	}

	for _, c := range []float64{0.0, -1.0} {
		if _, err := u.Value(c); !errors.Is(err, ErrDomain) {
			t.Errorf("Value(%v) error = %v, expected ErrDomain", c, err)
		}
		if _, err := u.Marginal(c); !errors.Is(err, ErrDomain) {
			t.Errorf("Marginal(%v) error = %v, expected ErrDomain", c, err)
		}
	}
	for _, m := range []float64{0.0, -0.5} {
		if _, err := u.InverseMarginal(m); !errors.Is(err, ErrDomain) {
			t.Errorf("InverseMarginal(%v) error = %v, expected ErrDomain", m, err)
		}
	}
}

func TestMarginal(t *testing.T) {
	tests := []struct {
		name         string
		riskAversion float64
		c            float64
		expected     float64
	}{
		{"rho=2 at c=1", 2.0, 1.0, 1.0},
		{"rho=2 at c=2", 2.0, 2.0, 0.25},
		{"Log utility at c=4", 1.0, 4.0, 0.25},
		{"rho=6 at c=1", 6.0, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := New(tt.riskAversion)
			if err != nil {
				t.Fatalf("New(%v) unexpected error: %v", tt.riskAversion, err)
			}
			got, err := u.Marginal(tt.c)
			if err != nil {
				t.Fatalf("Marginal(%v) unexpected error: %v", tt.c, err)
			}
			if !mathutil.WithinTolerance(got, tt.expected, 1e-12) {
				t.Errorf("Marginal(%v) = %v, expected %v", tt.c, got, tt.expected)
			}
		})
	}
}

// Marginal utility should diverge as consumption approaches zero.
func TestMarginalDivergesNearZero(t *testing.T) {
	u, err := New(2.0)
	if err != nil {
		t.Fatalf("New unexpected error: %v", err)
	}
	small, err := u.Marginal(1e-8)
	if err != nil {
		t.Fatalf("Marginal unexpected error: %v", err)
	}
	large, err := u.Marginal(1e-10)
	if err != nil {
		t.Fatalf("Marginal unexpected error: %v", err)
	}
	if large <= small {
		t.Errorf("Marginal should increase as consumption shrinks: %v <= %v", large, small)
	}
}

func TestInverseMarginalRoundTrip(t *testing.T) {
	riskAversions := []float64{0.5, 1.0, 2.0, 3.0, 6.0}
	consumptions := []float64{0.01, 0.5, 1.0, 2.0, 10.0, 250.0}

	for _, rho := range riskAversions {
		u, err := New(rho)
		if err != nil {
			t.Fatalf("New(%v) unexpected error: %v", rho, err)
		}
		for _, c := range consumptions {
			m, err := u.Marginal(c)
			if err != nil {
				t.Fatalf("Marginal(%v) unexpected error: %v", c, err)
			}
			back, err := u.InverseMarginal(m)
			if err != nil {
				t.Fatalf("InverseMarginal(%v) unexpected error: %v", m, err)
			}
			if !mathutil.WithinTolerance(back, c, 1e-9*c+1e-12) {
				t.Errorf("rho=%v: InverseMarginal(Marginal(%v)) = %v", rho, c, back)
			}
		}
	}
}
