package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/daynotes/internal/notes"
)

const recentAuditLimit = 5

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version      string         `json:"version"`
	Backend      string         `json:"backend"`
	Location     string         `json:"location"`
	SizeBytes    int64          `json:"size_bytes"`
	Notes        int            `json:"notes"`
	Marked       int            `json:"marked"`
	ByPriority   map[string]int `json:"by_priority"`
	LastUpdated  string         `json:"last_updated,omitempty"`
	AuditEntries int64          `json:"audit_entries"`
	RecentWrites []auditJSON    `json:"recent_writes"`
}

type auditJSON struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Detail string `json:"detail,omitempty"`
	Time   string `json:"time"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	e, err := openEnv(context.Background(), c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// executeWithEnv runs status against a provided env (for testing).
func (c *StatusCommand) executeWithEnv(e *env) error {
	ctx := context.Background()

	out := statusJSON{
		Version:      c.version,
		Backend:      e.backend.Kind,
		Location:     e.backend.Location,
		ByPriority:   map[string]int{},
		RecentWrites: []auditJSON{},
	}

	snap := e.session.Store().Snapshot()
	out.Notes = len(snap)
	for _, p := range notes.Priorities {
		out.ByPriority[string(p)] = 0
	}
	for k, r := range snap {
		out.ByPriority[string(r.Priority)]++
		if _, ok := e.session.Annotator().AnnotateKey(k); ok {
			out.Marked++
		}
	}

	switch {
	case e.backend.sqlite != nil:
		stats, err := e.backend.sqlite.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		out.SizeBytes = getDatabaseSize(e.backend.db, e.backend.Location)
		out.AuditEntries = stats.AuditEntries
		if !stats.LastUpdated.IsZero() {
			out.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
		}

		entries, err := e.backend.sqlite.RecentAudit(ctx, recentAuditLimit)
		if err != nil {
			return fmt.Errorf("read audit log: %w", err)
		}
		for _, a := range entries {
			out.RecentWrites = append(out.RecentWrites, auditJSON{
				Action: a.Action,
				Key:    a.Key,
				Detail: a.Detail,
				Time:   a.Time.UTC().Format(time.RFC3339),
			})
		}

	case e.backend.WatchFile != "":
		if info, err := os.Stat(e.backend.WatchFile); err == nil {
			out.SizeBytes = info.Size()
			out.LastUpdated = info.ModTime().UTC().Format(time.RFC3339)
		}
	}

	if wantJSON(c.globals) {
		return printJSON(out)
	}
	return c.printStatusHuman(out)
}

func (c *StatusCommand) printStatusHuman(out statusJSON) error {
	fmt.Println("daynotes Status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", out.Version)
	fmt.Printf("Backend:       %s\n", out.Backend)
	if out.Backend == "memory" {
		fmt.Printf("Location:      %s\n", out.Location)
	} else {
		fmt.Printf("Location:      %s (%s)\n", out.Location, formatBytes(out.SizeBytes))
	}
	fmt.Printf("Notes:         %s (%s marked)\n", formatNumber(int64(out.Notes)), formatNumber(int64(out.Marked)))

	if out.Notes > 0 {
		fmt.Println()
		fmt.Println("By Priority:")
		for i := len(notes.Priorities) - 1; i >= 0; i-- {
			p := string(notes.Priorities[i])
			fmt.Printf("  %-12s %s\n", p, formatNumber(int64(out.ByPriority[p])))
		}
	}

	if out.LastUpdated != "" {
		fmt.Println()
		fmt.Printf("Last write:    %s\n", out.LastUpdated)
	}

	if out.Backend == "sqlite" {
		fmt.Printf("Audit log:     %s entries\n", formatNumber(out.AuditEntries))
		if len(out.RecentWrites) > 0 {
			fmt.Println()
			fmt.Println("Recent Writes:")
			for _, a := range out.RecentWrites {
				fmt.Printf("  %s  %-6s %s %s\n", a.Time, a.Action, a.Key, a.Detail)
			}
		}
	}

	return nil
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	// Try file stat first
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	// Fallback: query SQLite for in-memory or unavailable file
	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

