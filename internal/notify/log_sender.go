package notify

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	channel Channel
	logger  *slog.Logger
}

// NewLogSender creates a sender for channel backed by logger.
func NewLogSender(channel Channel, logger *slog.Logger) *LogSender {
	return &LogSender{channel: channel, logger: logger}
}

func (s *LogSender) Channel() Channel { return s.channel }

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "notification",
		slog.String("channel", string(msg.Channel)),
		slog.String("to", maskRecipient(msg.To)),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// maskRecipient keeps only the last three characters of a recipient.
func maskRecipient(to string) string {
	r := []rune(to)
	if len(r) <= 3 {
		return "***"
	}
	return "***" + string(r[len(r)-3:])
}
