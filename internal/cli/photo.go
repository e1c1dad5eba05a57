package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/dateutil"
)

type PhotoCmd struct {
	Task string `arg:"" help:"Task slot (progress_pic, workout_1, workout_2, reading, water, diet)."`
	File string `arg:"" optional:"" help:"Path to the photo. Omit to clear the slot."`
	Date string `help:"Date to attach to (YYYY-MM-DD). Defaults to today." default:"today"`
}

func (c *PhotoCmd) Run(ctx *Context) error {
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

	cmdCtx := context.Background()

	if c.File == "" {
		s.UploadPhoto(cmdCtx, task, "", nil)
		if ctx.Mirror.Enabled() {
			waitCtx, cancel := context.WithTimeout(cmdCtx, 10*time.Second)
			defer cancel()
			if err := s.AwaitRemote(waitCtx); err != nil {
				fmt.Println(warningStyle.Render(fmt.Sprintf("Remote removal not confirmed: %v", err)))
			}
		}
		if s.IsComplete() {
			if _, err := s.SetDayLogged(cmdCtx, true); err != nil {
				return err
			}
		}
		fmt.Printf("Cleared %s photo for %s\n", task.StorageKey(), dateutil.ISO(s.CurrentDay()))
		return nil
	}

	image, err := os.ReadFile(c.File)
	if err != nil {
		return apperr.Wrap(apperr.Validation, fmt.Sprintf("failed to read photo %s", c.File), err)
	}

	s.UploadPhoto(cmdCtx, task, "file://"+c.File, image)
	fmt.Printf("Staged %s photo for %s\n", task.StorageKey(), dateutil.ISO(s.CurrentDay()))

	if ctx.Mirror.Enabled() {
		waitCtx, cancel := context.WithTimeout(cmdCtx, 30*time.Second)
		defer cancel()
		if err := s.AwaitRemote(waitCtx); err != nil {
			fmt.Println(warningStyle.Render(fmt.Sprintf("Upload not confirmed: %v", err)))
		} else {
			fmt.Println("Uploaded to remote storage.")
		}
	}

	if s.IsComplete() {
		// Day already logged: re-log so the photo lands in the store.
		if _, err := s.SetDayLogged(cmdCtx, true); err != nil {
			return err
		}
		fmt.Println("Photo saved to the logged day.")
	} else {
		fmt.Println("Run '75progress log' to persist this day with its photos.")
	}
	ctx.flushRemote(s)
	return nil
}
