package test

import (
	"context"
	"sync"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/notify"
)

// LimiterCall records a rate limit check.
type LimiterCall struct {
	Tier string
	Key  string
}

// LimiterStub records checks and rejects the tiers listed in Deny.
type LimiterStub struct {
	mu    sync.Mutex
	Deny  map[string]error
	Calls []LimiterCall
}

// Check returns the configured error for tier, if any.
func (s *LimiterStub) Check(_ context.Context, tier, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, LimiterCall{Tier: tier, Key: key})
	return s.Deny[tier]
}

// Tiers returns the checked tiers in call order.
func (s *LimiterStub) Tiers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Calls))
	for _, c := range s.Calls {
		out = append(out, c.Tier)
	}
	return out
}

// NotifierStub captures messages synchronously.
type NotifierStub struct {
	mu       sync.Mutex
	Messages []notify.Message
}

// Send stores msg.
func (s *NotifierStub) Send(_ context.Context, msg notify.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msg)
}

// Sent returns a copy of the captured messages.
func (s *NotifierStub) Sent() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Message(nil), s.Messages...)
}
