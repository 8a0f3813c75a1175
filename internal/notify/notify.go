// Package notify delivers fire-and-forget user notifications. Delivery is a
// side channel: proofing and sign-in outcomes never depend on whether a
// message went out.
package notify

import "context"

// Message is one outbound notification.
type Message struct {
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// Notifier is the delivery port. Implementations must be safe for concurrent
// use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
