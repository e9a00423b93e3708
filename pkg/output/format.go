// Package output provides utilities for formatting and displaying solved
// policies.
package output

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/lifecycle-egm/internal/lifecycle"
)

// PrettyFormat outputs a human-readable rather than machine-readable table
// of the policy knots for each requested period.
func PrettyFormat(solution *lifecycle.LifeCycleSolution, periods []int) error {
	p := message.NewPrinter(language.English)
	for n, t := range periods {
		period, err := solution.Period(t)
		if err != nil {
			return err
		}

		fmt.Printf("--- Consumption policy for period %d ---\n", t)
		fmt.Printf("Cash-on-hand | Consumption\n")
		fmt.Printf("____________ | ___________\n")
		states, controls := period.Consumption.Knots()
		for i := range states {
			_, _ = p.Printf("%12.6f | %.6f\n", states[i], controls[i])
		}

		if period.Share != nil {
			fmt.Printf("--- Risky share policy for period %d ---\n", t)
			fmt.Printf("      Assets | Share\n")
			fmt.Printf("      ______ | _____\n")
			assets, shares := period.Share.Knots()
			for i := range assets {
				_, _ = p.Printf("%12.6f | %.6f\n", assets[i], shares[i])
			}
		}

		if n < len(periods)-1 {
			fmt.Printf("\n")
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format, one row per policy
// knot in long form.
func CsvFormat(solution *lifecycle.LifeCycleSolution, periods []int) error {
	fmt.Printf("\"period\",\"policy\",\"state\",\"control\"\n")
	for _, t := range periods {
		period, err := solution.Period(t)
		if err != nil {
			return err
		}

		states, controls := period.Consumption.Knots()
		for i := range states {
			fmt.Printf("\"%d\",\"consumption\",\"%.6f\",\"%.6f\"\n", t, states[i], controls[i])
		}

		if period.Share != nil {
			assets, shares := period.Share.Knots()
			for i := range assets {
				fmt.Printf("\"%d\",\"share\",\"%.6f\",\"%.6f\"\n", t, assets[i], shares[i])
			}
		}
	}
	return nil
}
