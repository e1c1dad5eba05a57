package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type ClearCmd struct{}

// Run wipes all day entries after a confirmation and a safety backup.
func (c *ClearCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	fmt.Println("WARNING: This will delete every logged day from local storage.")
	fmt.Println("A backup will be created first. Remote data is not touched.")
	fmt.Print("Continue? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		fmt.Println("Clear cancelled.")
		return nil
	}

	if path, err := ctx.backupManager().Create(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: backup before clear failed: %v\n", err)
	} else {
		fmt.Printf("Backup created: %s\n", path)
	}

	if err := ctx.Store.ClearEntries(); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	fmt.Println("All day entries cleared.")
	return nil
}
