package cli

import (
	"fmt"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
	"github.com/happi2206/75progress/internal/session"
)

type DayCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD, 'today', or 'yesterday')." default:"today"`
}

func (c *DayCmd) Run(ctx *Context) error {
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

	return printDay(s)
}

func printDay(s *session.Session) error {
	dayNum, err := s.DayNumber()
	if err != nil {
		return err
	}
	streak, err := s.Streak()
	if err != nil {
		return err
	}

	header := fmt.Sprintf("Day %d of 75  %s", dayNum, dateutil.ISO(s.CurrentDay()))
	fmt.Println(titleStyle.Render(header))
	fmt.Printf("Completion: %.0f%%   Streak: %d day(s)", s.Completion()*100, streak)
	if s.IsComplete() {
		fmt.Printf("   %s", loggedDayStyle.Render("LOGGED"))
	}
	fmt.Println()
	fmt.Println()

	for _, task := range models.AllTasks {
		content := s.Content(task)
		switch content.Kind {
		case session.ContentPhoto:
			fmt.Printf("  [x] %-14s photo: %s\n", task.Title(), content.PhotoURL)
		case session.ContentNote:
			fmt.Printf("  [~] %-14s note: %s\n", task.Title(), content.Note)
		default:
			fmt.Printf("  [ ] %s\n", mutedStyle.Render(task.Title()))
		}
	}

	if summary := s.Summary(); summary != "" {
		fmt.Printf("\nSummary: %s\n", summary)
	}
	return nil
}
