package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/daynotes/internal/notes"
)

// noteJSON is the JSON output structure for a single day.
type noteJSON struct {
	Date     string `json:"date"`
	Exists   bool   `json:"exists"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Marked   bool   `json:"marked"`
	Color    string `json:"color,omitempty"`
	Hex      string `json:"hex,omitempty"`
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
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

// executeWithEnv runs show against a provided env (for testing).
func (c *ShowCommand) executeWithEnv(e *env) error {
	key, err := selectDate(e.session, c.Date)
	if err != nil {
		return err
	}
	return printNote(e, key, wantJSON(c.globals))
}

func describeNote(e *env, key notes.DateKey) noteJSON {
	out := noteJSON{Date: key.String(), Priority: string(notes.PriorityNone)}
	if r, ok := e.session.Store().Get(key); ok {
		out.Exists = true
		out.Text = r.Text
		out.Priority = string(r.Priority)
	}
	if m, ok := e.session.Annotator().AnnotateKey(key); ok {
		out.Marked = true
		out.Color = string(m.Color)
		out.Hex = m.Color.Hex()
	}
	return out
}

// printNote prints the stored state of one day.
func printNote(e *env, key notes.DateKey, asJSON bool) error {
	n := describeNote(e, key)
	if asJSON {
		return printJSON(n)
	}

	if !n.Exists {
		fmt.Printf("No note for %s.\n", n.Date)
		return nil
	}

	fmt.Printf("Date:      %s\n", n.Date)
	fmt.Printf("Priority:  %s\n", n.Priority)
	if n.Marked {
		fmt.Printf("Marker:    %s\n", n.Color)
	} else {
		fmt.Println("Marker:    none")
	}
	fmt.Println()
	fmt.Println(n.Text)
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
