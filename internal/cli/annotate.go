package cli

import (
	"context"
	"fmt"
)

// markerJSON is the JSON output structure for the annotate command.
type markerJSON struct {
	Date     string `json:"date"`
	Marked   bool   `json:"marked"`
	Color    string `json:"color,omitempty"`
	Hex      string `json:"hex,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Execute implements the go-flags Commander interface for AnnotateCommand.
func (c *AnnotateCommand) Execute(args []string) error {
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

// executeWithEnv runs annotate against a provided env (for testing).
func (c *AnnotateCommand) executeWithEnv(e *env) error {
	key, err := resolveDate(c.Date)
	if err != nil {
		return err
	}

	out := markerJSON{Date: key.String()}
	if m, ok := e.session.Annotator().AnnotateKey(key); ok {
		out.Marked = true
		out.Color = string(m.Color)
		out.Hex = m.Color.Hex()
		out.Priority = string(m.Priority)
	}

	if wantJSON(c.globals) {
		return printJSON(out)
	}

	if !out.Marked {
		fmt.Printf("%s: no marker\n", out.Date)
		return nil
	}
	fmt.Printf("%s: %s %s (%s)\n", out.Date, out.Color, out.Hex, out.Priority)
	return nil
}
