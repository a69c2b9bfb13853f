package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/middleware"
)

// OtpHandler processes phone login.
type OtpHandler struct {
	facade AuthFacade
}

// NewOtpHandler creates OtpHandler instance.
func NewOtpHandler(facade AuthFacade) *OtpHandler {
	return &OtpHandler{facade: facade}
}

// Send handles POST /api/otp/send.
func (h *OtpHandler) Send(c *gin.Context) {
	var req dto.OtpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	issued, err := h.facade.RequestOtp(c.Request.Context(), req.Phone, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OtpSendResponse{Phone: issued.Phone, ExpiresAt: issued.ExpiresAt, DevCode: issued.DevCode})
}

// Verify handles POST /api/otp/verify.
func (h *OtpHandler) Verify(c *gin.Context) {
	var req dto.OtpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	identity, err := h.facade.VerifyOtp(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookie(c, identity.Token)
	c.JSON(http.StatusOK, dto.OtpVerifyResponse{
		Token:   identity.Token,
		User:    dto.UserResponse{ID: identity.UserID, Phone: identity.Phone},
		NewUser: identity.NewUser,
	})
}
