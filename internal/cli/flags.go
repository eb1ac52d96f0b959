package cli

import (
	"io"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ShowCommand: print the note for a day.
type ShowCommand struct {
	Date string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`

	globals *GlobalFlags
	version string
}

// SetCommand: replace a day's note text and priority.
type SetCommand struct {
	Date     string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`
	Text     string `long:"text" short:"t" description:"Note text (default: remaining arguments)"`
	Priority string `long:"priority" short:"p" description:"Priority: none | low | medium | high" default:"none"`

	globals *GlobalFlags
	version string
}

// TextCommand: change a day's text, keeping its priority.
type TextCommand struct {
	Date string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`

	globals *GlobalFlags
	version string
}

// PriorityCommand: change a day's priority, keeping its text.
type PriorityCommand struct {
	Date string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`

	globals *GlobalFlags
	version string
}

// DeleteCommand: remove a day's note.
type DeleteCommand struct {
	Date string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`

	globals *GlobalFlags
	version string
}

// AnnotateCommand: print the calendar marker for a day.
type AnnotateCommand struct {
	Date string `long:"date" short:"d" description:"Day as YYYY-MM-DD (default: today)"`

	globals *GlobalFlags
	version string
}

// MonthCommand: render a month or year with note markers.
type MonthCommand struct {
	Month      string `long:"month" short:"m" description:"Month as YYYY-MM (default: current month)"`
	Year       bool   `long:"year" description:"Show the full year"`
	Fullscreen bool   `long:"fullscreen" description:"Use wide cells"`
	Plain      bool   `long:"plain" description:"Disable colors"`
	Watch      bool   `long:"watch" description:"Re-render when the stored notes change"`

	globals *GlobalFlags
	version string
}

// ListCommand: list notes in a date range.
type ListCommand struct {
	From string `long:"from" description:"First day, inclusive (YYYY-MM-DD)"`
	To   string `long:"to" description:"Last day, inclusive (YYYY-MM-DD)"`

	globals *GlobalFlags
	version string
}

// ExportCommand: write notes as an iCalendar file.
type ExportCommand struct {
	Out string `long:"out" short:"o" description:"Output file (default: stdout)"`

	globals *GlobalFlags
	version string
}

// StatusCommand: show storage backend, note counts and recent writes.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// PurgeCommand: delete ALL stored notes with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string

	// injectable for testing; nil means os.Stdin and its terminal state
	stdin      io.Reader
	isTerminal func() bool
}
