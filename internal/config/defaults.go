package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:           BackendSQLite,
			Path:              "~/.config/daynotes",
			SQLiteFile:        "daynotes.db",
			SnapshotDir:       "snapshots",
			SQLiteJournalMode: "wal",
		},
		Calendar: CalendarConfig{
			WeekStart:  "monday",
			Fullscreen: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Export: ExportConfig{
			ProductID:    "-//daynotes//EN",
			CalendarName: "Day notes",
		},
	}
}
