package notify

import (
	"fmt"
	"time"

	"idport/internal/user"
)

// NewDeviceSignInNotifier texts a user when their account is accessed from a
// device not seen before. Delivery goes through the dispatcher so the sign-in
// path never waits on the SMS gateway.
type NewDeviceSignInNotifier struct {
	dispatcher *Dispatcher
}

func NewNewDeviceSignInNotifier(dispatcher *Dispatcher) *NewDeviceSignInNotifier {
	return &NewDeviceSignInNotifier{dispatcher: dispatcher}
}

// Notify queues the new-device alert. Users without a phone on file are
// skipped silently.
func (n *NewDeviceSignInNotifier) Notify(u *user.User, signedInAt time.Time) {
	if u == nil || u.Phone == "" {
		return
	}
	n.dispatcher.Enqueue(Message{
		Recipient: u.Phone,
		Body: fmt.Sprintf(
			"Your account was just signed in to from a new device at %s. If this wasn't you, reset your password immediately.",
			signedInAt.UTC().Format("15:04 MST on Jan 2, 2006"),
		),
	})
}
