package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if _, err := resolveDate(c.Date); err != nil {
		return err
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// executeWithEnv runs delete against a provided env (for testing).
func (c *DeleteCommand) executeWithEnv(e *env) error {
	key, err := selectDate(e.session, c.Date)
	if err != nil {
		return err
	}

	_, existed := e.session.Store().Get(key)
	if err := e.session.DeleteSelected(); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if wantJSON(c.globals) {
		return printJSON(map[string]interface{}{
			"date":    key.String(),
			"deleted": existed,
		})
	}

	if existed {
		fmt.Printf("Deleted note for %s.\n", key)
	} else {
		fmt.Printf("No note for %s.\n", key)
	}
	return nil
}
