package handlers

import (
	"errors"
	"net/http"

	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Register creates an unverified account and mails the first OTP
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, "Registration successful. Please check your email for the verification code.", gin.H{
		"email":                user.Email,
		"requiresVerification": true,
	})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.OTPCode); err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Email verified successfully. You can now log in.", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "If an account with that email exists, a new verification code has been sent.", nil)
}

// Login authenticates a user and returns a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrForbidden) {
		// the frontend keys off requiresVerification to show the OTP form
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": err.Error(),
			"data":    gin.H{"requiresVerification": true, "email": req.Email},
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": res.Token,
		"user": gin.H{
			"id":    res.User.ID,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
	})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "If an account with that email exists, a password reset link has been sent.", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Password has been reset successfully. You can now log in with your new password.", nil)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"user": user})
}
