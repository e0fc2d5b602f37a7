package handler

import (
	"context"

	"github.com/edia-health/edia-backend/internal/middleware"
	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/service"
	"github.com/edia-health/edia-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthService is the part of service.AuthService used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*service.RefreshResponse, error)
	Logout(ctx context.Context, userID uint, refreshToken string) error
	Me(ctx context.Context, userID uint) (*models.LoginUser, error)
}

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{
		"user":    user.Summary(),
		"message": "Usuario registrado exitosamente.",
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Refresh handles access token refresh
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Logout revokes the caller's refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req service.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), middleware.GetUserID(c), req.Refresh); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// RegisterRoutes registers auth routes; rateLimit guards the anonymous ones
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, rateLimit gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", rateLimit, h.Register)
		auth.POST("/login", rateLimit, h.Login)
		auth.POST("/refresh", rateLimit, h.Refresh)
		auth.POST("/logout", authMiddleware, h.Logout)
		auth.GET("/me", authMiddleware, h.Me)
	}
}
