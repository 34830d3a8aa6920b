package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/standup-api/internal/config"
	"github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	cfg          *config.Config
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   *services.JWTService
	emailService EmailServiceInterface
	log          *logrus.Logger
}

func NewAuthHandler(cfg *config.Config, userService UserServiceInterface, tokenService TokenServiceInterface, jwtService *services.JWTService, emailService EmailServiceInterface, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
		emailService: emailService,
		log:          log,
	}
}

// MagicLink mints a one-time sign-in token and emails it. The response
// is the same whether or not the address was already known.
func (h *AuthHandler) MagicLink(c *drift.Context) {
	var req dto.MagicLinkRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		c.BadRequest("valid email is required")
		return
	}

	ctx := c.Request.Context()

	user, _, err := h.userService.FindOrCreateByEmail(ctx, email)
	if err != nil {
		c.InternalServerError("failed to process sign-in request")
		return
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(h.cfg.MagicLinkExpiry)
	if err := h.tokenService.StoreLoginToken(ctx, user.ID, services.HashToken(token), expiresAt); err != nil {
		c.InternalServerError("failed to process sign-in request")
		return
	}

	loginURL := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", h.cfg.BaseURL, token)
	if h.emailService.IsConfigured() {
		if err := h.emailService.SendMagicLink(user.Email, loginURL); err != nil {
			h.log.WithError(err).Warn("failed to send magic link email")
		}
	} else {
		h.log.WithField("login_url", loginURL).Info("email not configured, magic link logged")
	}

	_ = c.JSON(200, dto.MagicLinkResponse{Message: "check your email for a sign-in link"})
}

// Verify redeems a magic link token and issues a session token pair.
func (h *AuthHandler) Verify(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	ctx := c.Request.Context()

	userID, err := h.tokenService.RedeemLoginToken(ctx, services.HashToken(token))
	if err != nil {
		if errors.Is(err, services.ErrTokenInvalid) {
			c.Unauthorized("invalid or expired sign-in link")
			return
		}
		c.InternalServerError("failed to verify sign-in link")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("invalid or expired sign-in link")
		return
	}

	h.issueTokens(c, user.ID, user.Email)
}

// Refresh rotates a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()
	hash := services.HashToken(req.RefreshToken)

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, hash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("invalid refresh token")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	_ = h.tokenService.RevokeRefreshToken(ctx, hash)
	h.issueTokens(c, user.ID, user.Email)
}

// Logout revokes a single refresh token.
func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	_ = h.tokenService.RevokeRefreshToken(c.Request.Context(), services.HashToken(req.RefreshToken))
	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

// LogoutAll revokes every token belonging to the authenticated user.
func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "logged out everywhere"})
}

func (h *AuthHandler) issueTokens(c *drift.Context, userID uuid.UUID, email string) {
	pair, err := h.jwtService.GenerateTokenPair(userID, email)
	if err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(c.Request.Context(), userID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
