// Package report renders analysis results for operators: a per-state
// mileage table for quarterly filings and a KML export of attributed
// routes.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"ifta-mileage/internal/lib/trip"
	"ifta-mileage/internal/services"
)

// RoundMiles rounds to the tenth of a mile used on filing worksheets.
// Going through decimal avoids float artifacts like 150.04999999 printing
// as 150.0 while summing as 150.1.
func RoundMiles(miles float64) float64 {
	v, _ := decimal.NewFromFloat(miles).Round(1).Float64()
	return v
}

// WriteTable renders the per-state mileage table for one analyzed trip.
func WriteTable(w io.Writer, result *services.AnalysisResult) error {
	t := result.Trip

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tMILES\tPERCENT")
	for _, row := range t.StateMileage {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f%%\n",
			row.StateCode, RoundMiles(row.Miles), row.Percentage)
	}
	fmt.Fprintf(tw, "TOTAL\t%.1f\t\n", RoundMiles(t.TotalDistanceMiles))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nLegs: %d successful of %d\n", t.SuccessfulLegs, len(t.Legs))
	for _, leg := range t.Legs {
		status := leg.Method
		if leg.Failed {
			status = "failed: " + leg.Error
		}
		fmt.Fprintf(w, "  %d. %s -> %s  %.1f mi  (%s",
			leg.Index+1, leg.Origin.Label, leg.Destination.Label,
			RoundMiles(leg.DistanceMiles), status)
		if leg.AttributionMethod != "" {
			fmt.Fprintf(w, ", %s", leg.AttributionMethod)
		}
		fmt.Fprintln(w, ")")
	}

	if t.ErrorSummary != "" {
		fmt.Fprintf(w, "\nErrors: %s\n", t.ErrorSummary)
		if t.PrimaryError != "" {
			fmt.Fprintf(w, "Most frequent: %s\n", t.PrimaryError)
		}
	}

	if check := result.Check; check.Severity != trip.SeverityOK {
		fmt.Fprintf(w, "\n%s: %s\n", strings.ToUpper(check.Severity), check.Message)
	}

	return nil
}
