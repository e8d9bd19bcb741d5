package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/domain/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authHandlers struct {
	auth   *auth.Service
	logger *zap.Logger
}

func (h *authHandlers) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		tracing.GinLogger(c, h.logger).Info("Login rejected", zap.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	setSessionCookie(c, session.ID.String(), time.Until(session.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{
		"token":      session.ID,
		"user":       gin.H{"id": session.UserID, "username": session.Username, "groups": session.Groups},
		"expires_at": session.ExpiresAt,
	})
}

func (h *authHandlers) logout(c *gin.Context) {
	if token := middleware.Token(c); token != "" {
		h.auth.Logout(token)
	}
	setSessionCookie(c, "", -time.Second)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *authHandlers) register(c *gin.Context) {
	if !h.auth.AllowRegister() {
		c.JSON(http.StatusForbidden, gin.H{"error": auth.ErrRegistrationDisabled.Error()})
		return
	}

	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(req.Username, req.Password, nil)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *authHandlers) session(c *gin.Context) {
	session, ok := middleware.Session(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func setSessionCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}
