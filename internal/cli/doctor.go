package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/happi2206/75progress/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("FAIL store reachable\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("ok   store reachable\n")
		storeReachable = true
	}

	if storeReachable {
		if err := checkData(ctx); err != nil {
			fmt.Printf("FAIL data integrity\n   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("ok   data integrity\n")
		}
	} else {
		fmt.Printf("skip data integrity (store not reachable)\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("warn backups\n   %v\n", err)
	} else {
		fmt.Printf("ok   backups present\n")
	}

	if err := checkClock(); err != nil {
		fmt.Printf("FAIL clock sanity\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("ok   clock sanity\n")
	}

	if err := checkDuplicateProcess(); err != nil {
		fmt.Printf("warn concurrent processes\n   %v\n", err)
	} else {
		fmt.Printf("ok   single process\n")
	}

	if ctx.Mirror.Enabled() {
		fmt.Printf("ok   remote sync configured\n")
	} else {
		fmt.Printf("info remote sync disabled (local-only mode)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed.")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

// checkData verifies day keys parse and each day appears once.
func checkData(ctx *Context) error {
	entries, err := ctx.Store.QueryRange(
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		iso := entry.Day.Format("2006-01-02")
		if seen[iso] {
			return fmt.Errorf("duplicate entry for day %s", iso)
		}
		seen[iso] = true

		for _, photo := range entry.Photos {
			if photo.Label == "" {
				return fmt.Errorf("photo %s on %s has no task label", photo.ID, iso)
			}
		}
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	backups, err := ctx.backupManager().List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider running '75progress backup create'")
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkDuplicateProcess warns when another 75progress process is
// running; concurrent writers can race on the store file.
func checkDuplicateProcess() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	name := filepath.Base(os.Args[0])
	count := 0
	for _, p := range procs {
		if p.Pid() != self && strings.Contains(p.Executable(), name) {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d other %s process(es) running", count, name)
	}
	return nil
}
