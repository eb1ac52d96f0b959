package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/runnerr0/daynotes/internal/calendar"
	"github.com/runnerr0/daynotes/internal/notes"
)

const watchDebounce = 50 * time.Millisecond

// dayMarkerJSON is one marked day in the month command's JSON output.
type dayMarkerJSON struct {
	Date     string `json:"date"`
	Color    string `json:"color"`
	Hex      string `json:"hex"`
	Priority string `json:"priority"`
}

type monthJSON struct {
	Year  int             `json:"year"`
	Month int             `json:"month,omitempty"`
	Days  []dayMarkerJSON `json:"days"`
}

// Execute implements the go-flags Commander interface for MonthCommand.
func (c *MonthCommand) Execute(args []string) error {
	if _, _, err := c.target(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := c.executeWithEnv(e, os.Stdout); err != nil {
		return err
	}
	if !c.Watch {
		return nil
	}

	styled := c.styled()
	return c.watch(ctx, e, func() {
		if styled {
			fmt.Print("\033[H\033[2J")
		}
		if err := c.executeWithEnv(e, os.Stdout); err != nil {
			e.logger.Error("render calendar", "error", err)
		}
	})
}

// target returns the year and month to render.
func (c *MonthCommand) target() (int, time.Month, error) {
	if c.Month == "" {
		t := now()
		return t.Year(), t.Month(), nil
	}
	t, err := time.Parse("2006-01", c.Month)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q: want YYYY-MM", c.Month)
	}
	return t.Year(), t.Month(), nil
}

func (c *MonthCommand) styled() bool {
	return !c.Plain && term.IsTerminal(int(os.Stdout.Fd()))
}

func (c *MonthCommand) grid(e *env) calendar.Grid {
	return calendar.Grid{
		Render:     e.session.Annotator().CellRender,
		WeekStart:  e.cfg.WeekStartDay(),
		Fullscreen: c.Fullscreen || e.cfg.Calendar.Fullscreen,
		Selected:   notes.KeyOf(now()),
		Location:   time.Local,
		Styled:     c.styled(),
	}
}

// executeWithEnv renders once against a provided env (for testing).
func (c *MonthCommand) executeWithEnv(e *env, w io.Writer) error {
	year, month, err := c.target()
	if err != nil {
		return err
	}

	if wantJSON(c.globals) {
		return c.writeJSON(e, w, year, month)
	}

	g := c.grid(e)
	if c.Year {
		_, err = io.WriteString(w, g.Year(year))
	} else {
		_, err = io.WriteString(w, g.Month(year, month))
	}
	return err
}

func (c *MonthCommand) writeJSON(e *env, w io.Writer, year int, month time.Month) error {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := first.AddDate(0, 1, 0)
	out := monthJSON{Year: year, Month: int(month), Days: []dayMarkerJSON{}}
	if c.Year {
		first = time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		end = first.AddDate(1, 0, 0)
		out.Month = 0
	}

	for d := first; d.Before(end); d = d.AddDate(0, 0, 1) {
		m, ok := e.session.Annotator().Annotate(d)
		if !ok {
			continue
		}
		out.Days = append(out.Days, dayMarkerJSON{
			Date:     notes.KeyOf(d).String(),
			Color:    string(m.Color),
			Hex:      m.Color.Hex(),
			Priority: string(m.Priority),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// watch reloads the session and calls onChange whenever the backend's
// snapshot file changes, until ctx is done. Bursts of events within
// watchDebounce collapse into one reload.
func (c *MonthCommand) watch(ctx context.Context, e *env, onChange func()) error {
	if e.backend.WatchFile == "" {
		return fmt.Errorf("--watch needs a persistent storage backend, have %s", e.backend.Kind)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(e.backend.WatchFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	// SQLite also touches name-wal and name-shm.
	base := filepath.Base(e.backend.WatchFile)
	e.logger.Debug("watching for changes", "path", e.backend.WatchFile)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			e.logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("fsnotify error", "error", err)

		case <-debounce:
			debounce = nil
			e.session.Reload(ctx)
			onChange()
		}
	}
}
