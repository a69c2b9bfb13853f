// Package notify delivers customer notifications outside the request path.
package notify

import "context"

// Channel names a delivery medium.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Message is a rendered notification.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

// Sender delivers messages over one channel.
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, msg Message) error
}
