package ratelimit

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tier names. Each tier keeps its own counters.
const (
	TierOtpSendIP        = "otp.send.ip"
	TierOtpSendPhone     = "otp.send.phone"
	TierOtpVerifyPhone   = "otp.verify.phone"
	TierOrderCreateIP    = "orders.create.ip"
	TierOrderCreatePhone = "orders.create.phone"
	TierOrderTrackIP     = "orders.track.ip"
	TierOrderTrackCode   = "orders.track.code"
	TierPaymentCreate    = "payments.create.order"
	TierPaymentCallback  = "payments.callback.order"
)

// Tiers maps tier names to policies.
type Tiers map[string]Policy

// DefaultTiers returns the built-in policies.
func DefaultTiers() Tiers {
	return Tiers{
		TierOtpSendIP:        {Window: time.Hour, MaxCount: 10, MinInterval: 2 * time.Second},
		TierOtpSendPhone:     {Window: time.Hour, MaxCount: 5, MinInterval: 60 * time.Second},
		TierOtpVerifyPhone:   {Window: 10 * time.Minute, MaxCount: 10},
		TierOrderCreateIP:    {Window: 10 * time.Minute, MaxCount: 20, MinInterval: 2 * time.Second},
		TierOrderCreatePhone: {Window: time.Hour, MaxCount: 5, MinInterval: 30 * time.Second},
		TierOrderTrackIP:     {Window: 10 * time.Minute, MaxCount: 30, MinInterval: time.Second},
		TierOrderTrackCode:   {Window: 10 * time.Minute, MaxCount: 10},
		TierPaymentCreate:    {Window: 10 * time.Minute, MaxCount: 10, MinInterval: 5 * time.Second},
		TierPaymentCallback:  {Window: 10 * time.Minute, MaxCount: 30},
	}
}

type tiersFile struct {
	Tiers map[string]Policy `yaml:"tiers"`
}

// LoadTiers returns the defaults overridden by the tiers listed in path.
// An empty path yields the defaults.
func LoadTiers(path string) (Tiers, error) {
	tiers := DefaultTiers()
	if path == "" {
		return tiers, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate limit file: %w", err)
	}

	var file tiersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rate limit file: %w", err)
	}

	for name, p := range file.Tiers {
		if p.Window <= 0 || p.MaxCount <= 0 || p.MinInterval < 0 {
			return nil, fmt.Errorf("rate limit tier %q: window and max must be positive", name)
		}
		tiers[name] = p
	}
	return tiers, nil
}
