package handlers

import (
	"context"
	"errors"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamhub/teamhub-api/internal/services"
	"github.com/teamhub/teamhub-api/pkg/dto"
)

type AuthHandler struct {
	userService UserServiceInterface
	jwtService  *services.JWTService
}

func NewAuthHandler(userService UserServiceInterface, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{userService: userService, jwtService: jwtService}
}

func (h *AuthHandler) Signup(c *drift.Context) {
	var req dto.SignupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Name == "" {
		c.BadRequest("email and name are required")
		return
	}

	user, err := h.userService.Create(context.Background(), req.Email, req.Name)
	if err != nil {
		c.InternalServerError("failed to create user")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to issue token")
		return
	}

	_ = c.JSON(201, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.userService.GetByEmail(context.Background(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.Unauthorized("unknown user")
			return
		}
		c.InternalServerError("failed to log in")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to issue token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
