package report

import (
	"io"

	"batchsend/internal/domain"

	"github.com/fatih/color"
)

// Console prints the human-readable end-of-run report.
type Console struct {
	out     io.Writer
	heading *color.Color
	success *color.Color
	failure *color.Color
}

func NewConsole(out io.Writer, colored bool) *Console {
	c := &Console{
		out:     out,
		heading: color.New(color.FgCyan).Add(color.Bold),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
	}
	if !colored {
		c.heading.DisableColor()
		c.success.DisableColor()
		c.failure.DisableColor()
	}
	return c
}

func (c *Console) PrintSummary(summary domain.BatchSummary) {
	c.heading.Fprintln(c.out, "\n--- RESULTS SUMMARY ---")
	c.heading.Fprintf(c.out, "Total addresses: %d\n", summary.Total)
	c.success.Fprintf(c.out, "Successful: %d\n", len(summary.Successful))
	c.failure.Fprintf(c.out, "Failed: %d\n", len(summary.Failed))

	if len(summary.Successful) > 0 {
		c.success.Fprintln(c.out, "\nSuccessful Transactions:")
		for _, result := range summary.Successful {
			c.success.Fprintf(c.out, "- Address: %s, Hash: %s\n", result.Address, result.Hash)
		}
	}
	if len(summary.Failed) > 0 {
		c.failure.Fprintln(c.out, "\nFailed Transactions:")
		for _, result := range summary.Failed {
			c.failure.Fprintf(c.out, "- Address: %s, Error: %s\n", result.Address, result.Error)
		}
	}
}

func (c *Console) PrintSaved(location string) {
	c.heading.Fprintf(c.out, "\nResults saved to %s\n", location)
}
