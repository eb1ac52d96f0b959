package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		if err := c.confirm(); err != nil {
			return err
		}
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

func (c *PurgeCommand) terminal() bool {
	if c.isTerminal != nil {
		return c.isTerminal()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (c *PurgeCommand) input() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// confirm asks the user to type PURGE. Without a terminal on stdin there is
// nobody to ask, so it refuses instead of reading piped input.
func (c *PurgeCommand) confirm() error {
	if !c.terminal() {
		return fmt.Errorf("purge needs confirmation but stdin is not a terminal: rerun with --force")
	}

	fmt.Println("⚠ WARNING: This will permanently delete ALL stored notes.")
	fmt.Println("  - Every day's text and priority")
	fmt.Println("  - The SQLite audit log, if any")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "PURGE" to confirm: `)

	scanner := bufio.NewScanner(c.input())
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	input := strings.TrimSpace(scanner.Text())
	if input != "PURGE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

// executeWithEnv purges the storage behind a provided env (for testing).
func (c *PurgeCommand) executeWithEnv(e *env) error {
	ctx := context.Background()

	if e.backend.sqlite != nil {
		if err := e.backend.sqlite.PurgeAll(ctx); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
	} else if err := e.persister.Clear(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	e.session.Reload(ctx)
	e.logger.Info("purged all notes", "backend", e.backend.Kind)

	// Output
	if wantJSON(c.globals) {
		return printJSON(map[string]interface{}{
			"purged":  true,
			"message": "all notes deleted",
		})
	}

	fmt.Println("Purged all notes. daynotes is empty.")
	return nil
}
