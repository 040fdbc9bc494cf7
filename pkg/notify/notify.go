// Package notify is the hand-off point to whatever delivers system
// notifications on the host.
package notify

import "context"

// Dispatcher delivers a notification. Callers treat it as fire-and-forget.
type Dispatcher interface {
	Dispatch(ctx context.Context, title, body, iconURL, dedupeTag string) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, title, body, iconURL, dedupeTag string) error

func (f DispatcherFunc) Dispatch(ctx context.Context, title, body, iconURL, dedupeTag string) error {
	return f(ctx, title, body, iconURL, dedupeTag)
}

// Nop drops every notification.
var Nop Dispatcher = DispatcherFunc(func(context.Context, string, string, string, string) error {
	return nil
})

type recipientKey struct{}

// WithRecipient attaches the address of the user a notification is for.
func WithRecipient(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, recipientKey{}, email)
}

// RecipientFrom returns the address set by WithRecipient.
func RecipientFrom(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(recipientKey{}).(string)
	return email, ok && email != ""
}
