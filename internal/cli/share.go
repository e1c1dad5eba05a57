package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/export"
)

type ShareCmd struct {
	Range  string `arg:"" help:"Range to share: today, 7, 30, or 75." default:"7"`
	Format string `help:"Output format: markdown or csv." enum:"markdown,csv" default:"markdown"`
	Out    string `help:"Write to a file instead of stdout." type:"path"`
}

func (c *ShareCmd) Run(ctx *Context) error {
	shareRange, err := parseShareRange(c.Range)
	if err != nil {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exporter := export.New(ctx.Store, ctx.Engine)
	report, err := exporter.Build(shareRange, dateutil.Normalize(time.Now()))
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if c.Format == "csv" {
		if err := report.CSV(out); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprint(out, report.Markdown()); err != nil {
			return err
		}
	}

	if c.Out != "" {
		fmt.Printf("Report written to %s\n", c.Out)
	}
	return nil
}
