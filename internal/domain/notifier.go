package domain

import "context"

// Message is a plain-text notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers one message to every recipient over a single session.
type Sender interface {
	Send(ctx context.Context, msg Message, recipients []string) error
}
