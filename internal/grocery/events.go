package grocery

// ChangeKind classifies a grocery list change event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one list change, as broadcast to live subscribers after a
// mutation commits. For deletes only the entry ID is meaningful.
type ChangeEvent struct {
	Kind  ChangeKind `json:"kind"`
	Entry Entry      `json:"entry"`
}

// ApplyEvent folds one change event into an in-memory projection of the
// list, returning the updated slice. Unknown-entry updates fall back to
// inserts and unknown-entry deletes are no-ops, so a projection that
// missed events converges instead of erroring.
func ApplyEvent(entries []Entry, ev ChangeEvent) []Entry {
	switch ev.Kind {
	case ChangeInsert, ChangeUpdate:
		for i, e := range entries {
			if e.ID == ev.Entry.ID {
				entries[i] = ev.Entry
				return entries
			}
		}
		return append(entries, ev.Entry)
	case ChangeDelete:
		for i, e := range entries {
			if e.ID == ev.Entry.ID {
				return append(entries[:i], entries[i+1:]...)
			}
		}
	}
	return entries
}

// eventsFromMutation expands a committed mutation into its change events.
func eventsFromMutation(m Mutation) []ChangeEvent {
	events := make([]ChangeEvent, 0, len(m.Inserts)+len(m.Updates)+len(m.Deletes))
	for _, e := range m.Inserts {
		events = append(events, ChangeEvent{Kind: ChangeInsert, Entry: e})
	}
	for _, e := range m.Updates {
		events = append(events, ChangeEvent{Kind: ChangeUpdate, Entry: e})
	}
	for _, id := range m.Deletes {
		events = append(events, ChangeEvent{Kind: ChangeDelete, Entry: Entry{ID: id}})
	}
	return events
}
