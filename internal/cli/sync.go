package cli

import (
	"context"
	"fmt"

	"github.com/happi2206/75progress/internal/dateutil"
)

type SyncCmd struct {
	Date string `arg:"" help:"Day to sync (YYYY-MM-DD or 'today')." default:"today"`
}

// Run fetches the day's remote photo URLs and merges them into local
// state, then pushes the day's current facts back to the mirror.
func (c *SyncCmd) Run(ctx *Context) error {
	if !ctx.Mirror.Enabled() {
		return fmt.Errorf("remote sync is disabled, set FIREBASE_SERVICE_ACCOUNT to enable it")
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
	syncSession(cmdCtx, s)

	// Re-log an already logged day so fetched URLs land in the store.
	if s.IsComplete() {
		if _, err := s.SetDayLogged(cmdCtx, true); err != nil {
			return err
		}
	}

	ctx.flushRemote(s)
	fmt.Printf("Synced %s\n", dateutil.ISO(s.CurrentDay()))
	return printDay(s)
}
