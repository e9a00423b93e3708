// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"io"
	"math"
	"os"
)

// SlicesWithinTolerance reports whether two float slices have the same
// length and agree element-wise within the given tolerance.
func SlicesWithinTolerance(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

// CaptureStdout runs f and returns everything it wrote to stdout.
func CaptureStdout(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}
