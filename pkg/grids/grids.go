// Package grids constructs the ordered post-decision asset grids the
// solver samples, either uniformly spaced or with multi-exponential
// growth so that points bunch where the consumption function has the most
// curvature.
package grids

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/lifecycle-egm/pkg/mathutil"
)

// ErrConfig indicates an invalid grid request.
var ErrConfig = errors.New("invalid grid configuration")

// Linspace returns size points uniformly spaced over [min, max] inclusive.
func Linspace(min, max float64, size int) ([]float64, error) {
	if size < 2 {
		return nil, fmt.Errorf("linspace needs at least 2 points, got %d: %w", size, ErrConfig)
	}
	if max <= min {
		return nil, fmt.Errorf("max %v must exceed min %v: %w", max, min, ErrConfig)
	}
	grid := make([]float64, size)
	step := (max - min) / float64(size-1)
	for i := range grid {
		grid[i] = min + float64(i)*step
	}
	grid[size-1] = max
	return grid, nil
}

// ExpMult returns a grid of size points on (0, max] whose spacing grows
// multi-exponentially: the nested-log transform of the points is uniform,
// so points concentrate near zero. timesToNest controls how many
// exponentiations are nested.
func ExpMult(min, max float64, size, timesToNest int) ([]float64, error) {
	if size < 1 {
		return nil, fmt.Errorf("grid size must be at least 1, got %d: %w", size, ErrConfig)
	}
	if timesToNest < 1 {
		return nil, fmt.Errorf("nesting depth must be at least 1, got %d: %w", timesToNest, ErrConfig)
	}
	if min < 0 || max <= min {
		return nil, fmt.Errorf("bounds [%v, %v] are invalid: %w", min, max, ErrConfig)
	}

	maxNested := max
	for i := 1; i <= timesToNest; i++ {
		maxNested = math.Log(maxNested + 1)
	}
	step := maxNested / float64(size)

	grid := make([]float64, size)
	point := maxNested
	for j := 1; j <= size; j++ {
		grid[size-j] = math.Exp(point) - 1
		point -= step
		for i := 2; i <= timesToNest; i++ {
			grid[size-j] = math.Exp(grid[size-j]) - 1
		}
	}

	// Un-nesting the top point accumulates rounding; pin it so the grid
	// tops out at exactly max.
	grid[size-1] = max
	return grid, nil
}

// ValidateAssetGrid checks that a post-decision asset grid is non-empty,
// strictly increasing, non-negative, and finite.
func ValidateAssetGrid(grid []float64) error {
	if len(grid) == 0 {
		return fmt.Errorf("asset grid is empty: %w", ErrConfig)
	}
	if grid[0] < 0 {
		return fmt.Errorf("asset grid starts at %v, must be non-negative: %w", grid[0], ErrConfig)
	}
	if !mathutil.IsStrictlyIncreasing(grid) {
		return fmt.Errorf("asset grid is not strictly increasing: %w", ErrConfig)
	}
	for i, a := range grid {
		if !mathutil.IsFinite(a) {
			return fmt.Errorf("asset grid point %d is not finite: %w", i, ErrConfig)
		}
	}
	return nil
}

// ValidateShareGrid checks that a portfolio share grid is strictly
// increasing and covers [0,1] end to end.
func ValidateShareGrid(grid []float64) error {
	if len(grid) < 2 {
		return fmt.Errorf("share grid needs at least 2 points, got %d: %w", len(grid), ErrConfig)
	}
	if !mathutil.IsStrictlyIncreasing(grid) {
		return fmt.Errorf("share grid is not strictly increasing: %w", ErrConfig)
	}
	if grid[0] != 0 || grid[len(grid)-1] != 1 {
		return fmt.Errorf("share grid endpoints [%v, %v] must cover [0,1]: %w",
			grid[0], grid[len(grid)-1], ErrConfig)
	}
	return nil
}
