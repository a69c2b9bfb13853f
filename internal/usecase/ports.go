package usecase

import (
	"context"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/notify"
)

// RateLimiter rejects calls exceeding a named tier for a key.
type RateLimiter interface {
	Check(ctx context.Context, tier, key string) error
}

// Notifier schedules a message for background delivery.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message)
}
