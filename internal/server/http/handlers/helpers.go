package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// currentUserRef is CurrentUserID as an optional reference.
func currentUserRef(c *gin.Context) *int64 {
	if id := CurrentUserID(c); id != 0 {
		return &id
	}
	return nil
}

// currentPhone is the verified phone claim of an authenticated caller.
func currentPhone(c *gin.Context) string {
	return c.GetString(middleware.PhoneContextKey)
}

func abortWith(c *gin.Context, status int, body dto.ErrorBody) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: body})
}

// bindError answers a request whose body failed to bind.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		abortWith(c, http.StatusBadRequest, dto.ErrorBody{Message: "invalid " + field, Field: field})
		return
	}
	abortWith(c, http.StatusBadRequest, dto.ErrorBody{Message: "invalid request body"})
}

// respondError maps domain errors to HTTP responses. Anything unrecognised
// becomes a generic 500 and the detail is attached for the request logger.
func respondError(c *gin.Context, err error) {
	var (
		rateErr  *domainErrors.RateLimitedError
		valErr   *domainErrors.ValidationError
		stockErr *domainErrors.InsufficientStockError
	)
	switch {
	case errors.As(err, &rateErr):
		c.Header("Retry-After", strconv.Itoa(rateErr.RetryAfterSec))
		abortWith(c, http.StatusTooManyRequests, dto.ErrorBody{Message: "too many requests", RetryAfterSec: rateErr.RetryAfterSec})
	case errors.As(err, &valErr):
		abortWith(c, http.StatusBadRequest, dto.ErrorBody{Message: valErr.Error(), Field: valErr.Field})
	case errors.As(err, &stockErr):
		abortWith(c, http.StatusConflict, dto.ErrorBody{Message: "insufficient stock", Products: stockErr.Products})
	case errors.Is(err, domainErrors.ErrInvalidOtp):
		abortWith(c, http.StatusBadRequest, dto.ErrorBody{Message: "invalid code", Field: "code"})
	case errors.Is(err, domainErrors.ErrOtpLocked):
		abortWith(c, http.StatusForbidden, dto.ErrorBody{Message: "too many wrong codes, request a new one"})
	case errors.Is(err, domainErrors.ErrOtpNotFound):
		abortWith(c, http.StatusNotFound, dto.ErrorBody{Message: "code not found or expired"})
	case errors.Is(err, domainErrors.ErrNotFound):
		abortWith(c, http.StatusNotFound, dto.ErrorBody{Message: "not found"})
	case errors.Is(err, domainErrors.ErrUnknownGateway):
		abortWith(c, http.StatusNotFound, dto.ErrorBody{Message: "unknown payment gateway"})
	case errors.Is(err, domainErrors.ErrAlreadyPaid):
		abortWith(c, http.StatusConflict, dto.ErrorBody{Message: "order already paid"})
	case errors.Is(err, domainErrors.ErrGatewayNotConfigured):
		_ = c.Error(err)
		abortWith(c, http.StatusServiceUnavailable, dto.ErrorBody{Message: "payment gateway unavailable"})
	default:
		_ = c.Error(err)
		abortWith(c, http.StatusInternalServerError, dto.ErrorBody{Message: "internal error"})
	}
}
