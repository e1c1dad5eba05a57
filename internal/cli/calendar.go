package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
)

type CalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to the current month."`
}

func (c *CalendarCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	month := dateutil.Normalize(time.Now())
	if c.Month != "" {
		parsed, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("invalid month format, use YYYY-MM: %w", err)
		}
		month = parsed.UTC()
	}

	grid := ctx.Engine.CalendarGrid(month, time.Sunday)

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	entries, err := ctx.Store.QueryRange(first, last)
	if err != nil {
		return err
	}
	logged := make(map[string]bool)
	for _, e := range entries {
		if e.IsComplete {
			logged[dateutil.ISO(e.Day)] = true
		}
	}

	today := dateutil.Normalize(time.Now())

	fmt.Println(titleStyle.Render(month.Format("January 2006")))
	fmt.Println(" Su  Mo  Tu  We  Th  Fr  Sa")

	var row strings.Builder
	for i, cell := range grid {
		if cell == nil {
			row.WriteString("  . ")
		} else {
			label := fmt.Sprintf("%3d ", cell.Day())
			switch {
			case logged[dateutil.ISO(*cell)]:
				label = loggedDayStyle.Render(label)
			case dateutil.SameDay(*cell, today):
				label = todayStyle.Render(label)
			case cell.After(today):
				label = mutedStyle.Render(label)
			}
			row.WriteString(label)
		}
		if (i+1)%7 == 0 {
			fmt.Println(row.String())
			row.Reset()
		}
	}

	fmt.Printf("\n%d day(s) logged this month\n", len(logged))
	return nil
}
