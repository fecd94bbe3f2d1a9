package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/internal/application"
	"github.com/quicktalk/quicktalk/pkg/helpers"
	"github.com/quicktalk/quicktalk/pkg/response"
	"github.com/quicktalk/quicktalk/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,handle"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"date_of_birth"` // YYYY-MM-DD
	CountryOfOrigin string `json:"country_of_origin"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	OTP             string `json:"otp" binding:"required,otp"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// statusFor maps lifecycle errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrMissingFields),
		errors.Is(err, application.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidOTP),
		errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		CountryOfOrigin: req.CountryOfOrigin,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"date_of_birth": "must be YYYY-MM-DD"})
			return
		}
		in.DateOfBirth = &dob
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if errors.Is(err, application.ErrVerificationSend) {
		// The account exists; only the email failed. Tell the caller to
		// retry verification instead of re-registering.
		response.Error(c, http.StatusInternalServerError, "user created but failed to send verification email", nil)
		return
	}
	if err != nil {
		response.Error(c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"username": u.Username},
		"registration successful, please verify your email with the OTP")
}

// VerifyEmail POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Email, req.OTP); err != nil {
		response.Error(c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified successfully")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, statusFor(err), err.Error(), nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"username": u.Username}, "login successful")
}

// RequestPasswordReset POST /api/auth/request-password-reset
// Responds with the same body whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, statusFor(err), "failed to send reset OTP email", nil)
		return
	}
	response.Success(c, http.StatusOK, nil, "if this email exists, a reset code has been sent")
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword, req.ConfirmPassword); err != nil {
		response.Error(c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, nil, "password reset successful, you can now log in with the new password")
}
