// internal/interfaces/http/handlers/user.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/library-backend/internal/domain/user"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userService *user.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationError(c, err)
		return
	}

	created, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Failed to create user")
		return
	}

	Created(c, "User created successfully", created)
}

// GetUsers handles GET /users
func (h *UserHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ValidationError(c, err)
		return
	}

	result, err := h.userService.GetUsers(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, "Failed to retrieve users", err)
		return
	}

	Success(c, "Users retrieved successfully", result)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	found, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Failed to retrieve user")
		return
	}

	Success(c, "User retrieved successfully", found)
}

// GetUserByUserID handles GET /users/userId/:userId
func (h *UserHandler) GetUserByUserID(c *gin.Context) {
	found, err := h.userService.GetActiveUserByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err, "Failed to retrieve user")
		return
	}

	Success(c, "User retrieved successfully", found)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationError(c, err)
		return
	}

	if req.IsEmpty() {
		EmptyUpdate(c)
		return
	}

	updated, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err, "Failed to update user")
		return
	}

	Success(c, "User updated successfully", updated)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err, "Failed to delete user")
		return
	}

	Success(c, "User deleted successfully", nil)
}

func (h *UserHandler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, user.ErrInvalidUserID):
		Error(c, http.StatusBadRequest, "Invalid user ID")
	case errors.Is(err, user.ErrUserNotFound):
		Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, user.ErrDuplicateUserID):
		Error(c, http.StatusConflict, "User with this User ID already exists")
	case errors.Is(err, user.ErrDuplicateEmail):
		Error(c, http.StatusConflict, "User with this email already exists")
	default:
		InternalError(c, fallback, err)
	}
}
