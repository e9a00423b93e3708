package gothic

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/lifecycle-egm/pkg/discrete"
	"github.com/iwvelando/lifecycle-egm/pkg/interpolate"
	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
	"github.com/iwvelando/lifecycle-egm/pkg/utility"
)

func newTestShocks(t *testing.T, n int) *discrete.Approximation {
	t.Helper()
	shocks, err := discrete.NewMeanOneLogNormal(n, 0.5)
	if err != nil {
		t.Fatalf("NewMeanOneLogNormal unexpected error: %v", err)
	}
	return shocks
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	u, err := utility.New(2.0)
	if err != nil {
		t.Fatalf("utility.New unexpected error: %v", err)
	}
	engine, err := NewEngine(u, 0.96, 1.0, 1.02, newTestShocks(t, 7))
	if err != nil {
		t.Fatalf("NewEngine unexpected error: %v", err)
	}
	return engine
}

func TestNewEngineValidation(t *testing.T) {
	u, err := utility.New(2.0)
	if err != nil {
		t.Fatalf("utility.New unexpected error: %v", err)
	}
	shocks := newTestShocks(t, 7)

	tests := []struct {
		name        string
		u           *utility.CRRA
		discount    float64
		growth      float64
		grossReturn float64
		shocks      *discrete.Approximation
	}{
		{"Nil utility", nil, 0.96, 1.0, 1.02, shocks},
		{"Zero discount", u, 0.0, 1.0, 1.02, shocks},
		{"Discount above one", u, 1.5, 1.0, 1.02, shocks},
		{"Zero growth", u, 0.96, 0.0, 1.02, shocks},
		{"Negative gross return", u, 0.96, 1.0, -1.0, shocks},
		{"Nil shocks", u, 0.96, 1.0, 1.02, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.u, tt.discount, tt.growth, tt.grossReturn, tt.shocks)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("NewEngine error = %v, expected ErrConfig", err)
			}
		})
	}
}

func TestTerminalValue(t *testing.T) {
	engine := newTestEngine(t)
	got, err := engine.TerminalValue(2.0)
	if err != nil {
		t.Fatalf("TerminalValue unexpected error: %v", err)
	}
	// CRRA with rho=2: u(c) = -1/c.
	if !mathutil.WithinTolerance(got, -0.5, 1e-12) {
		t.Errorf("TerminalValue(2) = %v, expected -0.5", got)
	}
	if _, err := engine.TerminalValue(0); !errors.Is(err, utility.ErrDomain) {
		t.Errorf("TerminalValue(0) error = %v, expected ErrDomain", err)
	}
}

// The endogenous-gridpoints step must satisfy the first-order condition
// exactly: marginal utility at the implied consumption equals the expected
// marginal value.
func TestImpliedConsumptionSatisfiesFOC(t *testing.T) {
	engine := newTestEngine(t)

	next, err := interpolate.NewPolicyFunction([]float64{0, 10}, []float64{0, 5})
	if err != nil {
		t.Fatalf("NewPolicyFunction unexpected error: %v", err)
	}

	policies := []struct {
		name string
		next Policy
	}{
		{"Terminal rule", nil},
		{"Interpolated next policy", next},
	}

	for _, pol := range policies {
		t.Run(pol.name, func(t *testing.T) {
			for _, a := range []float64{0.0, 0.5, 1.0, 2.0, 4.0} {
				c, err := engine.ImpliedConsumption(a, pol.next)
				if err != nil {
					t.Fatalf("ImpliedConsumption(%v) unexpected error: %v", a, err)
				}
				mu, err := engine.Utility().Marginal(c)
				if err != nil {
					t.Fatalf("Marginal(%v) unexpected error: %v", c, err)
				}
				mv, err := engine.ExpectedMarginalValue(a, pol.next)
				if err != nil {
					t.Fatalf("ExpectedMarginalValue(%v) unexpected error: %v", a, err)
				}
				if !mathutil.WithinTolerance(mu, mv, 1e-9*mv) {
					t.Errorf("a=%v: u'(c) = %v, expected marginal value %v", a, mu, mv)
				}
			}
		})
	}
}

// With a degenerate one-point shock the terminal implied consumption has a
// closed form: (beta R growth^-rho)^(-1/rho) * (R a / growth + shock).
func TestImpliedConsumptionDegenerateGoldenValue(t *testing.T) {
	rho, beta, growth, gross := 2.0, 0.96, 1.0, 1.02
	u, err := utility.New(rho)
	if err != nil {
		t.Fatalf("utility.New unexpected error: %v", err)
	}
	degenerate := newTestShocks(t, 1)
	engine, err := NewEngine(u, beta, growth, gross, degenerate)
	if err != nil {
		t.Fatalf("NewEngine unexpected error: %v", err)
	}
	shock := degenerate.Min()

	for _, a := range []float64{0.0, 1.0, 3.0} {
		got, err := engine.ImpliedConsumption(a, nil)
		if err != nil {
			t.Fatalf("ImpliedConsumption(%v) unexpected error: %v", a, err)
		}
		want := math.Pow(beta*gross*math.Pow(growth, -rho), -1/rho) * (gross*a/growth + shock)
		if !mathutil.WithinTolerance(got, want, 1e-9) {
			t.Errorf("a=%v: implied consumption = %v, expected %v", a, got, want)
		}
	}
}

func TestExpectedValueTerminal(t *testing.T) {
	engine := newTestEngine(t)
	shocks := engine.Shocks()
	rho := engine.Utility().RiskAversion()

	a := 1.5
	got, err := engine.ExpectedValue(a, nil)
	if err != nil {
		t.Fatalf("ExpectedValue unexpected error: %v", err)
	}

	want := 0.0
	for _, node := range shocks.Nodes() {
		c := engine.GrossReturn()/engine.GrowthFactor()*a + node.Value
		want += node.Probability * math.Pow(c, 1-rho) / (1 - rho)
	}
	want *= engine.Discount() * math.Pow(engine.GrowthFactor(), 1-rho)

	if !mathutil.WithinTolerance(got, want, 1e-12) {
		t.Errorf("ExpectedValue(%v) = %v, expected %v", a, got, want)
	}
}

// Below the natural borrowing limit next-period resources go negative
// under the worst shock and the expectation must fail loudly.
func TestExpectationsBelowNaturalLimit(t *testing.T) {
	engine := newTestEngine(t)
	limit := -engine.Shocks().Min() * engine.GrowthFactor() / engine.GrossReturn()
	tooLow := limit - 0.1

	if _, err := engine.ExpectedValue(tooLow, nil); !errors.Is(err, utility.ErrDomain) {
		t.Errorf("ExpectedValue(%v) error = %v, expected ErrDomain", tooLow, err)
	}
	if _, err := engine.ExpectedMarginalValue(tooLow, nil); !errors.Is(err, utility.ErrDomain) {
		t.Errorf("ExpectedMarginalValue(%v) error = %v, expected ErrDomain", tooLow, err)
	}
	if _, err := engine.ImpliedConsumption(tooLow, nil); !errors.Is(err, utility.ErrDomain) {
		t.Errorf("ImpliedConsumption(%v) error = %v, expected ErrDomain", tooLow, err)
	}
}

// Consumption out of greater assets is never smaller.
func TestImpliedConsumptionMonotone(t *testing.T) {
	engine := newTestEngine(t)
	prev := math.Inf(-1)
	for _, a := range []float64{0.0, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0} {
		c, err := engine.ImpliedConsumption(a, nil)
		if err != nil {
			t.Fatalf("ImpliedConsumption(%v) unexpected error: %v", a, err)
		}
		if c <= prev {
			t.Errorf("consumption not increasing at a=%v: %v <= %v", a, c, prev)
		}
		prev = c
	}
}
