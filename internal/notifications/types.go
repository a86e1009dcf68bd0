package notifications

// Payload is a generic user-facing notification payload.
type Payload struct {
	Title   string
	Content string
	// Urgent asks the backend for an attention-grabbing notification when it has one.
	Urgent bool
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}
