package test

import (
	"errors"

	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied code.
func (h HasherStub) Hash(code string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(code)
	}
	return "hash:" + code, nil
}

// Compare validates code against stored hash.
func (h HasherStub) Compare(hash string, code string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, code)
	}
	if hash != "hash:"+code {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(int64, string) (string, error)
	ParseFn func(string) (*pkgAuth.Claims, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(userID int64, phone string) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID, phone)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return &pkgAuth.Claims{UserID: 1, Phone: "0912345678"}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	Claims  *pkgAuth.Claims
	Err     error
	ParseFn func(string) (*pkgAuth.Claims, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Claims, nil
}

var _ pkgAuth.CodeHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
