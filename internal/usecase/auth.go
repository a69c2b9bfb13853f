package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/notify"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/ratelimit"
)

// OtpIssued describes a freshly sent code. DevCode is only filled outside production.
type OtpIssued struct {
	Phone     string
	ExpiresAt time.Time
	DevCode   string
}

// Identity is the outcome of a successful verification.
type Identity struct {
	UserID  int64
	Phone   string
	Token   string
	NewUser bool
}

// AuthUseCase handles phone OTP login and session tokens.
type AuthUseCase struct {
	users    repository.UserRepository
	codes    otp.Store
	hasher   pkgAuth.CodeHasher
	tokens   pkgAuth.Strategy
	limiter  RateLimiter
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics

	exposeCode bool
	now        func() time.Time
	newCode    func() (string, error)
}

// AuthParams lists AuthUseCase collaborators.
type AuthParams struct {
	fx.In

	Config   *config.Config
	Users    repository.UserRepository
	Codes    otp.Store
	Hasher   pkgAuth.CodeHasher
	Tokens   pkgAuth.Strategy
	Limiter  RateLimiter
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(p AuthParams) *AuthUseCase {
	exposeCode := p.Config.Development()
	if exposeCode {
		p.Logger.Warn("otp codes are returned in API responses", slog.String("env", p.Config.Environment))
	}
	return &AuthUseCase{
		users:      p.Users,
		codes:      p.Codes,
		hasher:     p.Hasher,
		tokens:     p.Tokens,
		limiter:    p.Limiter,
		notifier:   p.Notifier,
		logger:     p.Logger,
		metrics:    p.Metrics,
		exposeCode: exposeCode,
		now:        time.Now,
		newCode:    otp.GenerateCode,
	}
}

// RequestOtp issues a new code for phone, replacing any previous one.
func (u *AuthUseCase) RequestOtp(ctx context.Context, rawPhone, ip string) (*OtpIssued, error) {
	phone, err := otp.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	if err := u.limiter.Check(ctx, ratelimit.TierOtpSendIP, ip); err != nil {
		return nil, err
	}
	if err := u.limiter.Check(ctx, ratelimit.TierOtpSendPhone, phone); err != nil {
		return nil, err
	}

	code, err := u.newCode()
	if err != nil {
		return nil, err
	}
	hash, err := u.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}

	now := u.now()
	entry := model.OtpEntry{
		CodeHash:  hash,
		ExpiresAt: now.Add(otp.CodeTTL),
		CreatedAt: now,
	}
	if err := u.codes.Put(ctx, phone, entry); err != nil {
		return nil, err
	}

	u.notifier.Send(ctx, notify.Message{
		Channel: notify.ChannelSMS,
		To:      phone,
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otp.CodeTTL.Minutes())),
	})
	u.metrics.OtpEvents.WithLabelValues("issued").Inc()

	issued := &OtpIssued{Phone: phone, ExpiresAt: entry.ExpiresAt}
	if u.exposeCode {
		issued.DevCode = code
	}
	return issued, nil
}

// VerifyOtp consumes the code of phone and returns a session for its owner.
func (u *AuthUseCase) VerifyOtp(ctx context.Context, rawPhone, code string) (*Identity, error) {
	phone, err := otp.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	if !isNumericCode(code) {
		return nil, domainErrors.Invalid("code", fmt.Sprintf("must be %d digits", otp.CodeLength))
	}

	if err := u.limiter.Check(ctx, ratelimit.TierOtpVerifyPhone, phone); err != nil {
		return nil, err
	}

	now := u.now()
	err = u.codes.Update(ctx, phone, func(cur *model.OtpEntry) (*model.OtpEntry, error) {
		switch {
		case cur == nil, cur.Expired(now):
			return nil, domainErrors.ErrOtpNotFound
		case cur.FailedAttempts >= otp.MaxFailedAttempts:
			return nil, domainErrors.ErrOtpLocked
		}
		if u.hasher.Compare(cur.CodeHash, code) != nil {
			next := *cur
			next.FailedAttempts++
			return &next, domainErrors.ErrInvalidOtp
		}
		return nil, nil
	})
	if err != nil {
		u.metrics.OtpEvents.WithLabelValues(otpOutcome(err)).Inc()
		return nil, err
	}
	u.metrics.OtpEvents.WithLabelValues("verified").Inc()

	user, created, err := u.ensureUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	token, err := u.tokens.IssueToken(user.ID, phone)
	if err != nil {
		return nil, err
	}

	return &Identity{UserID: user.ID, Phone: phone, Token: token, NewUser: created}, nil
}

// ensureUser returns the user owning phone, creating it on first login.
func (u *AuthUseCase) ensureUser(ctx context.Context, phone string) (*model.User, bool, error) {
	usr, err := u.users.GetByPhone(ctx, phone)
	if err == nil {
		return usr, false, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, false, err
	}

	usr, err = u.users.Create(ctx, phone)
	if err == nil {
		u.logger.Info("customer registered", slog.Int64("user_id", usr.ID))
		return usr, true, nil
	}
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		usr, err = u.users.GetByPhone(ctx, phone)
		if err != nil {
			return nil, false, err
		}
		return usr, false, nil
	}
	return nil, false, err
}

// ParseToken extracts the session claims from provided token.
func (u *AuthUseCase) ParseToken(token string) (*pkgAuth.Claims, error) {
	if token == "" {
		return nil, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func isNumericCode(code string) bool {
	if len(code) != otp.CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func otpOutcome(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrOtpNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrOtpLocked):
		return "locked"
	case errors.Is(err, domainErrors.ErrInvalidOtp):
		return "mismatch"
	default:
		return "error"
	}
}
