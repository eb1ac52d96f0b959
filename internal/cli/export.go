package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/daynotes/internal/calendar"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// executeWithEnv runs export against a provided env (for testing).
func (c *ExportCommand) executeWithEnv(e *env) error {
	snap := e.session.Store().Snapshot()
	ics := calendar.ExportICS(snap, calendar.ExportOptions{
		ProductID:    e.cfg.Export.ProductID,
		CalendarName: e.cfg.Export.CalendarName,
		Now:          now(),
	})

	exported := 0
	for _, r := range snap {
		if r.HasText() {
			exported++
		}
	}

	if c.Out == "" {
		fmt.Print(ics)
		return nil
	}

	if err := os.WriteFile(c.Out, []byte(ics), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	e.logger.Debug("export written", "path", c.Out, "bytes", len(ics))

	if wantJSON(c.globals) {
		return printJSON(map[string]interface{}{
			"path":  c.Out,
			"notes": exported,
		})
	}
	fmt.Printf("Exported %d notes to %s.\n", exported, c.Out)
	return nil
}
