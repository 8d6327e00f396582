package domain

type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventRemoved EventType = "REMOVED"
)

// BookEvent is the wire shape published on every book mutation.
// Book is nil for REMOVED.
type BookEvent struct {
	BookID    int64     `json:"bookId"`
	EventType EventType `json:"eventType"`
	Book      *Book     `json:"book,omitempty"`
}

// BookEventPublisher delivers events best-effort. Publish never blocks on
// the transport and never reports failure to the caller.
type BookEventPublisher interface {
	Publish(ev BookEvent)
}
