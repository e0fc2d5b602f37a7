package handler

import (
	"context"

	"github.com/edia-health/edia-backend/internal/middleware"
	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/service"
	"github.com/edia-health/edia-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// OnboardingService is the part of service.OnboardingService used by OnboardingHandler
type OnboardingService interface {
	Get(ctx context.Context, userID uint) (*models.ProfileResponse, error)
	Submit(ctx context.Context, userID uint, req *service.OnboardingRequest) (*models.ProfileResponse, error)
}

// OnboardingHandler serves the onboarding survey
type OnboardingHandler struct {
	onboardingService OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboardingService OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
	}
}

// Get returns the caller's profile, or an empty object when there is none
// GET /api/onboarding
func (h *OnboardingHandler) Get(c *gin.Context) {
	profile, err := h.onboardingService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		response.Success(c, gin.H{})
		return
	}

	response.Success(c, profile)
}

// Submit stores survey answers and marks the caller as onboarded; an empty
// body only sets the flag
// POST /api/onboarding, PATCH /api/onboarding
func (h *OnboardingHandler) Submit(c *gin.Context) {
	var req service.OnboardingRequest
	if !bindJSONOptional(c, &req) {
		return
	}

	profile, err := h.onboardingService.Submit(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

// RegisterRoutes registers onboarding routes
func (h *OnboardingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	onboarding := rg.Group("/onboarding")
	onboarding.Use(authMiddleware)
	{
		onboarding.GET("", h.Get)
		onboarding.POST("", h.Submit)
		onboarding.PATCH("", h.Submit)
	}
}
