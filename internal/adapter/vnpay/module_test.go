package vnpay

import (
	"testing"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	client, err := newClient(clientParams{Config: &config.Config{VNPay: testConfig()}, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.configured() {
		t.Fatal("expected credentials to be taken from config")
	}
}
