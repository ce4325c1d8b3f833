package domain

import "time"

// MaxHistoryEntries caps the interaction history; older entries are dropped on insert.
const MaxHistoryEntries = 50

// HistoryEntry is one recorded prompt/email pair.
type HistoryEntry struct {
	Prompt    string    `json:"prompt"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// PrependEntry inserts entry at the front of log and truncates it to MaxHistoryEntries.
// The input slice is not modified.
func PrependEntry(log []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	size := len(log) + 1
	if size > MaxHistoryEntries {
		size = MaxHistoryEntries
	}
	out := make([]HistoryEntry, 0, size)
	out = append(out, entry)
	for _, e := range log {
		if len(out) == MaxHistoryEntries {
			break
		}
		out = append(out, e)
	}
	return out
}
