package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

type ReviewCmd struct{}

// Run walks days interactively: p/n to navigate, l to toggle logged,
// s to edit the summary, q to quit.
func (c *ReviewCmd) Run(ctx *Context) error {
	s, err := ctx.openSession()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	cmdCtx := context.Background()

	for {
		fmt.Println()
		if err := printDay(s); err != nil {
			return err
		}
		fmt.Print("\n[p]rev [n]ext [l]og toggle [s]ummary [q]uit: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "p", "prev":
			if err := s.ShowPreviousDay(); err != nil {
				return err
			}
		case "n", "next":
			if err := s.ShowNextDay(); err != nil {
				return err
			}
		case "l", "log":
			streak, err := s.SetDayLogged(cmdCtx, !s.IsComplete())
			if err != nil {
				return err
			}
			fmt.Printf("Streak: %d day(s)\n", streak)
		case "s", "summary":
			fmt.Print("Summary: ")
			text, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			s.SetSummary(strings.TrimSpace(text))
			if _, err := s.SetDayLogged(cmdCtx, s.IsComplete()); err != nil {
				return err
			}
		case "q", "quit", "":
			if merged := s.MergePending(); merged > 0 {
				fmt.Printf("Merged %d remote update(s).\n", merged)
			}
			ctx.flushRemote(s)
			return nil
		default:
			fmt.Println("Unknown command.")
		}
	}
}
