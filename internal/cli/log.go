package cli

import (
	"context"
	"fmt"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/progress"
)

type LogCmd struct {
	Date string `arg:"" help:"Date to log (YYYY-MM-DD, 'today', or 'yesterday')." default:"today"`
	Undo bool   `help:"Mark the day as not logged instead."`
}

func (c *LogCmd) Run(ctx *Context) error {
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

	logged := !c.Undo
	score := s.Completion()
	if logged && score < progress.CompleteThreshold {
		fmt.Println(warningStyle.Render(
			fmt.Sprintf("Heads up: this day is only %.0f%% complete.", score*100)))
	}

	streak, err := s.SetDayLogged(context.Background(), logged)
	if err != nil {
		return err
	}

	if logged {
		fmt.Printf("%s %s\n", loggedDayStyle.Render("Logged"), dateutil.ISO(s.CurrentDay()))
		fmt.Printf("Current streak: %d day(s)\n", streak)
	} else {
		fmt.Printf("Unlogged %s\n", dateutil.ISO(s.CurrentDay()))
	}
	ctx.flushRemote(s)
	return nil
}
