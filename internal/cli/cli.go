package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Show     *ShowCommand
	Set      *SetCommand
	Text     *TextCommand
	Priority *PriorityCommand
	Delete   *DeleteCommand
	Annotate *AnnotateCommand
	Month    *MonthCommand
	List     *ListCommand
	Export   *ExportCommand
	Status   *StatusCommand
	Purge    *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "daynotes"
	parser.LongDescription = "Per-day notes with priorities, shown as markers on a terminal calendar."

	cmds := &commands{
		Show:     &ShowCommand{globals: &globals, version: version},
		Set:      &SetCommand{globals: &globals, version: version},
		Text:     &TextCommand{globals: &globals, version: version},
		Priority: &PriorityCommand{globals: &globals, version: version},
		Delete:   &DeleteCommand{globals: &globals, version: version},
		Annotate: &AnnotateCommand{globals: &globals, version: version},
		Month:    &MonthCommand{globals: &globals, version: version},
		List:     &ListCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("show", "Show a day's note", "Show the note text and priority stored for a day.", cmds.Show)
	parser.AddCommand("set", "Set a day's note", "Replace a day's note text and priority.", cmds.Set)
	parser.AddCommand("text", "Change a day's note text", "Change a day's note text, keeping its priority.", cmds.Text)
	parser.AddCommand("priority", "Change a day's priority", "Change a day's priority, keeping its text.", cmds.Priority)
	parser.AddCommand("delete", "Delete a day's note", "Remove the note stored for a day.", cmds.Delete)
	parser.AddCommand("annotate", "Show a day's calendar marker", "Show the marker the calendar draws for a day.", cmds.Annotate)
	parser.AddCommand("month", "Render the calendar", "Render a month, or a full year, with note markers.", cmds.Month)
	parser.AddCommand("list", "List notes", "List notes, optionally within a date range.", cmds.List)
	parser.AddCommand("export", "Export notes as iCalendar", "Write every note as an all-day event in an iCalendar file.", cmds.Export)
	parser.AddCommand("status", "Show storage status", "Show the storage backend, note counts and recent writes.", cmds.Status)
	parser.AddCommand("purge", "Delete ALL notes", "Delete ALL stored notes. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the daynotes CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("daynotes %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
