package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/daynotes/internal/calendar"
	"github.com/runnerr0/daynotes/internal/notes"
)

// listEntryJSON is one note in the list command's JSON output.
type listEntryJSON struct {
	Date     string `json:"date"`
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	if _, _, err := c.bounds(); err != nil {
		return err
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// bounds parses --from and --to. Unset bounds are empty keys.
func (c *ListCommand) bounds() (from, to notes.DateKey, err error) {
	if c.From != "" {
		if from, err = notes.ParseDateKey(c.From); err != nil {
			return "", "", fmt.Errorf("invalid --from %q: want YYYY-MM-DD", c.From)
		}
	}
	if c.To != "" {
		if to, err = notes.ParseDateKey(c.To); err != nil {
			return "", "", fmt.Errorf("invalid --to %q: want YYYY-MM-DD", c.To)
		}
	}
	if from != "" && to != "" && to < from {
		return "", "", fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return from, to, nil
}

// executeWithEnv runs list against a provided env (for testing).
func (c *ListCommand) executeWithEnv(e *env) error {
	from, to, err := c.bounds()
	if err != nil {
		return err
	}

	snap := e.session.Store().Snapshot()
	entries := []listEntryJSON{}
	// Canonical keys sort chronologically.
	for _, k := range snap.Keys() {
		if from != "" && k < from {
			continue
		}
		if to != "" && k > to {
			continue
		}
		r := snap[k]
		entries = append(entries, listEntryJSON{Date: k.String(), Priority: string(r.Priority), Text: r.Text})
	}

	if wantJSON(c.globals) {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No notes.")
		return nil
	}
	for _, en := range entries {
		fmt.Printf("%s  %-6s  %s\n", en.Date, en.Priority, calendar.SummaryLine(en.Text))
	}
	return nil
}
