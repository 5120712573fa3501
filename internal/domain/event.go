package domain

import "fmt"

// EventKind enumerates the change-feed variants.
type EventKind int

const (
	Inserted EventKind = iota + 1
	Updated
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "INSERT"
	case Updated:
		return "UPDATE"
	case Deleted:
		return "DELETE"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind accepts the wire names used on the change feed.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "INSERT":
		return Inserted, nil
	case "UPDATE":
		return Updated, nil
	case "DELETE":
		return Deleted, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Event is one change pushed by the remote store.
// Inserted and Updated carry Record; Deleted only needs ID.
type Event struct {
	Kind   EventKind
	Record Bookmark
	ID     string
}

// TargetID is the id the event applies to.
func (e Event) TargetID() string {
	if e.Kind == Deleted && e.ID != "" {
		return e.ID
	}
	return e.Record.ID
}

func InsertedEvent(b Bookmark) Event { return Event{Kind: Inserted, Record: b, ID: b.ID} }
func UpdatedEvent(b Bookmark) Event  { return Event{Kind: Updated, Record: b, ID: b.ID} }
func DeletedEvent(id string) Event   { return Event{Kind: Deleted, ID: id} }
