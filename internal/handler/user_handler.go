package handler

import (
	"context"

	"github.com/edia-health/edia-backend/internal/middleware"
	"github.com/edia-health/edia-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserService is the part of service.UserService used by UserHandler
type UserService interface {
	DeleteUser(ctx context.Context, callerID, targetID uint) error
}

// UserHandler handles administrative user requests
type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Delete removes another user's account; requires users.can_delete_user
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	targetID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), middleware.GetUserID(c), targetID); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(authMiddleware)
	{
		users.DELETE("/:id", h.Delete)
	}
}
