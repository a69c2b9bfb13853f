package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("482913")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "482913" {
		t.Fatal("expected code not to be stored in clear")
	}
	if err := hasher.Compare(hash, "482913"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "482914"); err == nil {
		t.Fatal("expected compare error for wrong code")
	}
}

func TestBcryptHasher_HashError(t *testing.T) {
	hasher := &BcryptHasher{cost: bcrypt.MaxCost + 1}
	if _, err := hasher.Hash("482913"); err == nil {
		t.Fatal("expected hash error for invalid cost")
	}
}
