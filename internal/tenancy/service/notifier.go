package service

import "context"

// Notifier delivers a message to an email address. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}
