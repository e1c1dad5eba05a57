package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/happi2206/75progress/internal/dateutil"
)

type SummaryCmd struct {
	Text []string `arg:"" optional:"" help:"Summary text. Omit to clear."`
	Date string   `help:"Date to summarize (YYYY-MM-DD). Defaults to today." default:"today"`
}

func (c *SummaryCmd) Run(ctx *Context) error {
	day, err := parseDay(c.Date)
	if err != nil {
		return err
	}

	s, err := ctx.openSession()
	if err != nil {
		return err
	}
	if err := s.Goto(day); err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(c.Text, " "))
	s.SetSummary(text)
	if _, err := s.SetDayLogged(context.Background(), s.IsComplete()); err != nil {
		return err
	}

	if text == "" {
		fmt.Printf("Cleared summary for %s\n", dateutil.ISO(s.CurrentDay()))
	} else {
		fmt.Printf("Summary saved for %s\n", dateutil.ISO(s.CurrentDay()))
	}
	ctx.flushRemote(s)
	return nil
}
