package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/cli"
	"github.com/happi2206/75progress/internal/config"
	"github.com/happi2206/75progress/internal/progress"
	"github.com/happi2206/75progress/internal/remote"
	"github.com/happi2206/75progress/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Store   string `help:"Store file path. Overrides PROGRESS75_STORE." type:"path"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize storage and profile."`
	Day      cli.DayCmd      `cmd:"" help:"Show a day's progress card." default:"1"`
	Photo    cli.PhotoCmd    `cmd:"" help:"Attach or clear a task photo."`
	Note     cli.NoteCmd     `cmd:"" help:"Attach or clear a task note."`
	Summary  cli.SummaryCmd  `cmd:"" help:"Set or clear a day's summary."`
	Log      cli.LogCmd      `cmd:"" help:"Log (or unlog) a day."`
	Review   cli.ReviewCmd   `cmd:"" help:"Walk through days interactively."`
	Calendar cli.CalendarCmd `cmd:"" help:"Show a month's calendar grid."`
	Streak   cli.StreakCmd   `cmd:"" help:"Show the current streak."`
	Share    cli.ShareCmd    `cmd:"" help:"Export a progress report."`
	Sync     cli.SyncCmd     `cmd:"" help:"Sync a day with the remote mirror."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks."`
	Clear    cli.ClearCmd    `cmd:"" help:"Delete all local day entries."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the store."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
	} `cmd:"" help:"Manage store backups."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("75progress"),
		kong.Description("75-day challenge tracker with photo logging and remote sync"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Store != "" {
		cfg.StorePath = CLI.Store
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	defer logger.Sync()

	var store storage.Provider
	if strings.HasSuffix(cfg.StorePath, ".json") {
		store = storage.NewJSONStore(cfg.StorePath)
	} else {
		store = storage.NewSQLiteStore(cfg.StorePath)
	}

	mirror, err := remote.New(context.Background(), cfg.ServiceAccountPath, cfg.StorageBucket, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mirror.Close()

	appCtx := &cli.Context{
		Config: cfg,
		Store:  store,
		Engine: progress.New(),
		Mirror: mirror,
		Logger: logger,
	}

	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperr.UserMessage(err))
		store.Close()
		os.Exit(1)
	}
	if err := store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}
