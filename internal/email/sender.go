package email

import "context"

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender provides a testable abstraction over SES delivery.
// Send returns the provider's message ID.
type EmailSender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
