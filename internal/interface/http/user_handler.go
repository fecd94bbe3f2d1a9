package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/internal/application"
	"github.com/quicktalk/quicktalk/pkg/helpers"
	"github.com/quicktalk/quicktalk/pkg/response"
)

type UserHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// Refresh POST /api/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if errors.Is(err, application.ErrInvalidCredentials) {
		response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	if err != nil {
		h.Logger.WithError(err).Error("token refresh failed")
		response.Error(c, http.StatusInternalServerError, "failed to refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed")
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.GetString("userID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	u, err := h.Svc.Profile(id)
	if errors.Is(err, application.ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		h.Logger.WithError(err).Error("profile lookup failed")
		response.Error(c, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}
	var dob string
	if u.DateOfBirth != nil {
		dob = u.DateOfBirth.Format("2006-01-02")
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":                u.ID,
		"username":          u.Username,
		"email":             u.Email,
		"first_name":        u.FirstName,
		"last_name":         u.LastName,
		"gender":            u.Gender,
		"date_of_birth":     dob,
		"country_of_origin": u.CountryOfOrigin,
		"email_verified":    u.EmailVerified,
		"created_at":        u.CreatedAt,
	}, "profile")
}

// Search GET /api/users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		response.Error(c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}
