package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	apiclient "github.com/donaldgifford/rental-gateway/internal/api/client"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printPricing(w io.Writer, p *apiclient.Pricing) error {
	tw := newTabWriter(w)
	tw.writef("Listing:\t%s\n", p.ListingID)
	tw.writef("Stay:\t%s -> %s (%d nights, %d guests)\n", p.CheckIn, p.CheckOut, p.Nights, p.Guests)
	tw.writef("Status:\t%s\n", p.Status)
	if p.Message != "" {
		tw.writef("Message:\t%s\n", p.Message)
	}
	if p.Totals != nil {
		tw.writef("Subtotal:\t%.2f %s\n", p.Totals.Subtotal, p.Totals.Currency)
		tw.writef("Taxes:\t%.2f\n", p.Totals.Taxes)
		tw.writef("Fees:\t%.2f\n", p.Totals.Fees)
		tw.writef("Total:\t%.2f %s\n", p.Totals.Total, p.Totals.Currency)
	}
	if p.AveragePerNight != nil {
		tw.writef("Per night:\t%.2f\n", *p.AveragePerNight)
	}
	if p.Shape != "" {
		tw.writef("Source shape:\t%s\n", p.Shape)
	}
	if p.Partial {
		tw.writef("Partial:\tsome nights had no price\n")
	}
	if len(p.Days) > 0 {
		tw.writef("\nDATE\tPRICE\tCURRENCY\n")
		for i := range p.Days {
			tw.writef("%s\t%.2f\t%s\n", p.Days[i].Date, p.Days[i].Price, p.Days[i].Currency)
		}
	}
	return tw.finish()
}

func printReviews(w io.Writer, s *domain.ReviewSummary) error {
	tw := newTabWriter(w)
	rating, total := "-", "-"
	if s.Rating != nil {
		rating = fmt.Sprintf("%.1f", *s.Rating)
	}
	if s.TotalCount != nil {
		total = fmt.Sprintf("%d", *s.TotalCount)
	}
	tw.writef("Rating:\t%s (%s reviews)\n", rating, total)
	if len(s.Reviews) > 0 {
		tw.writef("\nAUTHOR\tRATING\tWHEN\tTEXT\n")
		for i := range s.Reviews {
			r := &s.Reviews[i]
			stars := "-"
			if r.Rating != nil {
				stars = fmt.Sprintf("%.0f", *r.Rating)
			}
			tw.writef("%s\t%s\t%s\t%s\n",
				r.AuthorName,
				stars,
				r.RelativeTimeDescription,
				truncate(r.Text, 60),
			)
		}
	}
	return tw.finish()
}

func printTokensTable(w io.Writer, tokens []apiclient.TokenStatus) error {
	tw := newTabWriter(w)
	tw.writef("SCOPE\tSTATE\tEXPIRES\tBACKOFF UNTIL\n")
	for i := range tokens {
		tw.writef("%s\t%s\t%s\t%s\n",
			tokens[i].Scope,
			tokens[i].State,
			formatTime(tokens[i].ExpiresAt),
			formatTime(tokens[i].BackoffUntil),
		)
	}
	return tw.finish()
}

func printQuota(w io.Writer, q *apiclient.Quota) error {
	tw := newTabWriter(w)
	tw.writef("Daily limit:\t%d\n", q.DailyLimit)
	tw.writef("Used:\t%d\n", q.DailyUsed)
	tw.writef("Remaining:\t%d\n", q.Remaining)
	if !q.ResetAt.IsZero() {
		tw.writef("Resets at:\t%s\n", q.ResetAt.Format(time.RFC3339))
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
