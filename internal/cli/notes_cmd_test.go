package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/daynotes/internal/notes"
	"github.com/runnerr0/daynotes/internal/storage"
)

func TestShow_NoNote(t *testing.T) {
	e := newTestEnv(t)
	cmd := &ShowCommand{Date: "2024-03-01", globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})
	assert.Contains(t, output, "No note for 2024-03-01.")
}

func TestShow_WithNote(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "Dentist", notes.PriorityMedium)

	cmd := &ShowCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	assert.Contains(t, output, "Date:      2024-03-01")
	assert.Contains(t, output, "Priority:  medium")
	assert.Contains(t, output, "Marker:    amber")
	assert.Contains(t, output, "Dentist")
}

func TestShow_DefaultsToToday(t *testing.T) {
	setNow(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "today's note", notes.PriorityLow)

	cmd := &ShowCommand{globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})
	assert.Contains(t, output, "today's note")
}

func TestShow_JSON(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "Dentist", notes.PriorityHigh)

	cmd := &ShowCommand{Date: "2024-03-01", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	var got noteJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got), "output should be valid JSON: %s", output)
	assert.Equal(t, noteJSON{
		Date:     "2024-03-01",
		Exists:   true,
		Text:     "Dentist",
		Priority: "high",
		Marked:   true,
		Color:    "red",
		Hex:      "#f5222d",
	}, got)
}

func TestSet_JoinsArguments(t *testing.T) {
	e := newTestEnv(t)
	cmd := &SetCommand{Date: "2024-03-01", Priority: "High", globals: &GlobalFlags{}}

	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"Team", "offsite"}))
	})

	r, ok := e.session.Store().Get("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, notes.Record{Text: "Team offsite", Priority: notes.PriorityHigh}, r)
}

func TestSet_TextFlagWins(t *testing.T) {
	e := newTestEnv(t)
	cmd := &SetCommand{Date: "2024-03-01", Text: "from flag", Priority: "none", globals: &GlobalFlags{}}

	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"ignored"}))
	})

	r, _ := e.session.Store().Get("2024-03-01")
	assert.Equal(t, "from flag", r.Text)
}

func TestSet_PersistsToSQLite(t *testing.T) {
	e := newSQLiteTestEnv(t)
	cmd := &SetCommand{Date: "2024-03-01", Priority: "medium", globals: &GlobalFlags{}}

	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"Dentist"}))
	})

	// A second persister over the same database sees the note.
	snap := loadStored(t, storage.NewPersister(e.backend.kv, nil))
	assert.Equal(t, notes.Snapshot{
		"2024-03-01": {Text: "Dentist", Priority: notes.PriorityMedium},
	}, snap)
}

func TestSet_RejectsInvalidUTF8(t *testing.T) {
	e := newSQLiteTestEnv(t)
	seed(t, e, "2024-03-01", "café", notes.PriorityLow)

	cmd := &SetCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	captureOutput(t, func() {
		err := cmd.executeWithEnv(e, []string{"caf\xe9"})
		assert.ErrorIs(t, err, notes.ErrInvalidText)
	})

	assert.Equal(t, notes.Snapshot{
		"2024-03-01": {Text: "café", Priority: notes.PriorityLow},
	}, loadStored(t, e.persister))
}

func TestText_KeepsPriority(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "old", notes.PriorityHigh)

	cmd := &TextCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"new", "text"}))
	})

	r, _ := e.session.Store().Get("2024-03-01")
	assert.Equal(t, notes.Record{Text: "new text", Priority: notes.PriorityHigh}, r)
}

func TestText_EmptyClearsMarker(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "old", notes.PriorityHigh)

	cmd := &TextCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, nil))
	})

	_, marked := e.session.Annotator().AnnotateKey("2024-03-01")
	assert.False(t, marked)
}

func TestPriority_KeepsText(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "Dentist", notes.PriorityNone)

	cmd := &PriorityCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"low"}))
	})

	r, _ := e.session.Store().Get("2024-03-01")
	assert.Equal(t, notes.Record{Text: "Dentist", Priority: notes.PriorityLow}, r)
}

func TestPriority_OnEmptyDayCreatesRecord(t *testing.T) {
	e := newTestEnv(t)

	cmd := &PriorityCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e, []string{"high"}))
	})

	r, ok := e.session.Store().Get("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, notes.Record{Text: "", Priority: notes.PriorityHigh}, r)
	_, marked := e.session.Annotator().AnnotateKey("2024-03-01")
	assert.False(t, marked)
}

func TestDelete_RemovesNote(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "x", notes.PriorityLow)
	seed(t, e, "2024-03-02", "y", notes.PriorityLow)

	cmd := &DeleteCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	assert.Contains(t, output, "Deleted note for 2024-03-01.")
	_, ok := e.session.Store().Get("2024-03-01")
	assert.False(t, ok)
	assert.Len(t, loadStored(t, e.persister), 1)
}

func TestDelete_LastNoteClearsStorage(t *testing.T) {
	e := newSQLiteTestEnv(t)
	seed(t, e, "2024-03-01", "only", notes.PriorityLow)

	cmd := &DeleteCommand{Date: "2024-03-01", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, true, result["deleted"])

	stats, err := e.backend.sqlite.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Keys)
	assert.Empty(t, loadStored(t, e.persister))
}

func TestDelete_MissingNote(t *testing.T) {
	e := newTestEnv(t)
	cmd := &DeleteCommand{Date: "2024-03-01", globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})
	assert.Contains(t, output, "No note for 2024-03-01.")
}

func TestAnnotate(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "Dentist", notes.PriorityMedium)

	cmd := &AnnotateCommand{Date: "2024-03-01", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})
	assert.Equal(t, "2024-03-01: amber #faad14 (medium)\n", output)

	cmd.Date = "2024-03-02"
	output = captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})
	assert.Equal(t, "2024-03-02: no marker\n", output)
}

func TestAnnotate_JSON(t *testing.T) {
	e := newTestEnv(t)
	seed(t, e, "2024-03-01", "Dentist", notes.PriorityNone)

	cmd := &AnnotateCommand{Date: "2024-03-01", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(e))
	})

	var got markerJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, markerJSON{Date: "2024-03-01", Marked: true, Color: "neutral", Hex: "#8c8c8c", Priority: "none"}, got)
}
