package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-compliance-service/internal/api/dto"
	"github.com/spec-kit/sla-compliance-service/internal/auth"
	"github.com/spec-kit/sla-compliance-service/internal/config"
	apperrors "github.com/spec-kit/sla-compliance-service/pkg/util"
)

// AuthHandler exchanges the configured API key for a service token.
type AuthHandler struct {
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{tokens: tokens, cfg: cfg}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Service) == "" || req.APIKey == "" {
		return apperrors.NewValidationError("service and api_key required", nil)
	}
	if h.cfg.APIKeyHash == "" {
		return apperrors.NewUnauthorized("token exchange not configured")
	}
	if err := auth.CompareAPIKey(h.cfg.APIKeyHash, req.APIKey); err != nil {
		return apperrors.NewUnauthorized("invalid api key")
	}

	token, expiresAt, err := h.tokens.GenerateToken(strings.TrimSpace(req.Service))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt}})
}
