package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/runnerr0/daynotes/internal/notes"
)

// storedRecord is the current on-disk shape of one note.
type storedRecord struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

// EncodeSnapshot serializes snap as a flat JSON object keyed by date.
func EncodeSnapshot(snap notes.Snapshot) ([]byte, error) {
	out := make(map[string]storedRecord, len(snap))
	for k, r := range snap {
		p := r.Priority
		if p == "" {
			p = notes.PriorityNone
		}
		out[string(k)] = storedRecord{Text: r.Text, Priority: string(p)}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a persisted snapshot. Two value shapes are accepted:
// the current {"text", "priority"} object and the legacy bare string, which
// becomes a record with PriorityNone. Entries with a non-canonical date, a
// null or otherwise unusable value are dropped and counted in skipped. An
// unknown priority is read as PriorityNone. Data that is not a JSON object
// is an error.
func DecodeSnapshot(data []byte) (snap notes.Snapshot, skipped int, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}

	snap = make(notes.Snapshot, len(raw))
	for key, value := range raw {
		date, err := notes.ParseDateKey(key)
		if err != nil {
			skipped++
			continue
		}
		rec, ok := decodeRecord(value)
		if !ok {
			skipped++
			continue
		}
		snap[date] = rec
	}
	return snap, skipped, nil
}

func decodeRecord(value json.RawMessage) (notes.Record, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return notes.Record{}, false
	}

	switch value[0] {
	case '"':
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return notes.Record{}, false
		}
		return notes.Record{Text: text, Priority: notes.PriorityNone}, true
	case '{':
		var sr storedRecord
		if err := json.Unmarshal(value, &sr); err != nil {
			return notes.Record{}, false
		}
		p, err := notes.ParsePriority(sr.Priority)
		if err != nil {
			p = notes.PriorityNone
		}
		return notes.Record{Text: sr.Text, Priority: p}, true
	default:
		return notes.Record{}, false
	}
}
