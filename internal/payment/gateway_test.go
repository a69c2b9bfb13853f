package payment

import (
	"context"
	"errors"
	"net/url"
	"testing"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

type namedGateway model.Gateway

func (g namedGateway) Name() model.Gateway { return model.Gateway(g) }

func (namedGateway) CreatePayment(context.Context, Request) (*Link, error) { return &Link{}, nil }

func (namedGateway) VerifyCallback(url.Values) (*model.CallbackResult, error) { return nil, nil }

func (namedGateway) Acknowledge(Outcome) Ack { return Ack{} }

func TestReferenceRoundTrip(t *testing.T) {
	ref := Reference("EV250314K7Q2XM", "6f1c2a9e-3b4d-4c5e-8f70-112233445566")
	if ref != "EV250314K7Q2XM-6f1c2a9e" {
		t.Fatalf("unexpected reference %q", ref)
	}
	if code := OrderCodeOf(ref); code != "EV250314K7Q2XM" {
		t.Fatalf("expected order code, got %q", code)
	}
	if code := OrderCodeOf("EV250314K7Q2XM"); code != "EV250314K7Q2XM" {
		t.Fatalf("expected bare code to pass through, got %q", code)
	}
}

func TestRegistryGet(t *testing.T) {
	r := newRegistry(registryParams{Gateways: []Gateway{namedGateway("momo"), nil, namedGateway("vnpay")}})

	g, err := r.Get("vnpay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != model.GatewayVNPay {
		t.Fatalf("expected vnpay adapter, got %s", g.Name())
	}
	if _, err := r.Get("paypal"); !errors.Is(err, domainErrors.ErrUnknownGateway) {
		t.Fatalf("expected unknown gateway error, got %v", err)
	}
}
