package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/dateutil"
)

type NoteCmd struct {
	Task string   `arg:"" help:"Task slot (progress_pic, workout_1, workout_2, reading, water, diet)."`
	Text []string `arg:"" optional:"" help:"Note text. Omit to clear the slot."`
	Date string   `help:"Date to annotate (YYYY-MM-DD). Defaults to today." default:"today"`
}

func (c *NoteCmd) Run(ctx *Context) error {
	task, err := parseTask(c.Task)
	if err != nil {
		return apperr.Wrap(apperr.Validation, "invalid task", err)
	}
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
	s.SetNote(task, text)
	if _, err := s.SetDayLogged(context.Background(), s.IsComplete()); err != nil {
		return err
	}

	if text == "" {
		fmt.Printf("Cleared %s note for %s\n", task.StorageKey(), dateutil.ISO(s.CurrentDay()))
	} else {
		fmt.Printf("Noted %s for %s\n", task.StorageKey(), dateutil.ISO(s.CurrentDay()))
	}
	ctx.flushRemote(s)
	return nil
}
