// Package constants provides shared constants for the lifecycle-egm application.
package constants

// Numeric tolerance constants
const (
	// ProbabilityTolerance is the allowed deviation of discretized
	// probabilities from summing to exactly 1
	ProbabilityTolerance = 1e-9

	// ComparisonTolerance is the default tolerance for floating-point
	// comparisons of policy values
	ComparisonTolerance = 1e-9

	// QuadratureNodes is the fixed Gauss-Legendre node count used when
	// integrating over an equiprobable bin
	QuadratureNodes = 40

	// DistributionCheckTolerance is the allowed mismatch when verifying
	// that a supplied CDF and inverse CDF agree at the median
	DistributionCheckTolerance = 1e-6
)

// Model defaults
const (
	// DefaultShareGridSize is the default number of points used when
	// searching for the optimal risky portfolio share on [0,1]
	DefaultShareGridSize = 20

	// DefaultGridNesting is the default nesting depth for the
	// multi-exponential asset grid
	DefaultGridNesting = 20

	// DefaultShockNodes is the default discretization size for shock
	// distributions
	DefaultShockNodes = 7
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Constraint mode constants
const (
	// ConstraintNatural keeps only the self-imposed natural borrowing limit
	ConstraintNatural = "natural"

	// ConstraintArtificialAtZero forbids any borrowing at all
	ConstraintArtificialAtZero = "artificial-at-zero"
)

// Grid kind constants
const (
	// GridKindLinspace is the uniformly spaced asset grid
	GridKindLinspace = "linspace"

	// GridKindExpMult is the multi-exponential growth asset grid
	GridKindExpMult = "exp-mult"
)
