package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/daynotes/internal/notes"
)

func parsePriority(s string) (notes.Priority, error) {
	p, err := notes.ParsePriority(s)
	if err != nil {
		return "", fmt.Errorf("invalid priority %q (use none, low, medium or high): %w", s, err)
	}
	return p, nil
}

// Execute implements the go-flags Commander interface for SetCommand.
func (c *SetCommand) Execute(args []string) error {
	if _, err := resolveDate(c.Date); err != nil {
		return err
	}
	if _, err := parsePriority(c.Priority); err != nil {
		return err
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e, args)
}

// executeWithEnv runs set against a provided env (for testing).
func (c *SetCommand) executeWithEnv(e *env, args []string) error {
	text := c.Text
	if text == "" {
		text = strings.Join(args, " ")
	}

	p, err := parsePriority(c.Priority)
	if err != nil {
		return err
	}

	key, err := selectDate(e.session, c.Date)
	if err != nil {
		return err
	}
	if err := e.session.Edit(text, p); err != nil {
		return fmt.Errorf("set note: %w", err)
	}

	return printNote(e, key, wantJSON(c.globals))
}

// Execute implements the go-flags Commander interface for TextCommand.
func (c *TextCommand) Execute(args []string) error {
	if _, err := resolveDate(c.Date); err != nil {
		return err
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e, args)
}

// executeWithEnv runs text against a provided env (for testing). No
// arguments clears the text.
func (c *TextCommand) executeWithEnv(e *env, args []string) error {
	key, err := selectDate(e.session, c.Date)
	if err != nil {
		return err
	}
	if err := e.session.EditText(strings.Join(args, " ")); err != nil {
		return fmt.Errorf("set note text: %w", err)
	}

	return printNote(e, key, wantJSON(c.globals))
}

// Execute implements the go-flags Commander interface for PriorityCommand.
func (c *PriorityCommand) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("priority takes exactly one argument: none, low, medium or high")
	}
	if _, err := resolveDate(c.Date); err != nil {
		return err
	}
	if _, err := parsePriority(args[0]); err != nil {
		return err
	}

	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e, args)
}

// executeWithEnv runs priority against a provided env (for testing).
func (c *PriorityCommand) executeWithEnv(e *env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("priority takes exactly one argument: none, low, medium or high")
	}
	p, err := parsePriority(args[0])
	if err != nil {
		return err
	}

	key, err := selectDate(e.session, c.Date)
	if err != nil {
		return err
	}
	if err := e.session.EditPriority(p); err != nil {
		return fmt.Errorf("set note priority: %w", err)
	}

	return printNote(e, key, wantJSON(c.globals))
}
