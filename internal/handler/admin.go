package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vmportal/internal/access"
	"vmportal/internal/auth"
	"vmportal/internal/middleware"
	"vmportal/internal/models"
	"vmportal/internal/repository"
)

// AdminHandler covers user provisioning and VM assignment. Every route runs
// behind Authenticate + RequireAdmin.
type AdminHandler interface {
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	CreateUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	AssignVMs(c *gin.Context)
}

type adminHandler struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewAdminHandler(users repository.UserRepository, log *zap.Logger) AdminHandler {
	return &adminHandler{users: users, log: log}
}

type CreateUserRequest struct {
	Username    string  `json:"username" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required"`
	FullName    string  `json:"fullName"`
	Role        string  `json:"role"`
	AssignedVMs []int64 `json:"assignedVMs"`
}

type UpdateUserRequest struct {
	Username    *string  `json:"username"`
	Email       *string  `json:"email"`
	Password    *string  `json:"password"`
	FullName    *string  `json:"fullName"`
	Role        *string  `json:"role"`
	AssignedVMs *[]int64 `json:"assignedVMs"`
}

type AssignVMsRequest struct {
	VMIDs *[]int64 `json:"vmIds"`
}

func validRole(role string) bool {
	return role == models.RoleStudent || role == models.RoleAdmin
}

func (h *adminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *adminHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *adminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !validRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be student or admin"})
		return
	}

	if _, err := h.users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("Failed to check existing user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.Username
	}
	assigned := req.AssignedVMs
	if assigned == nil {
		assigned = []int64{}
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		AssignedVMs:  assigned,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		h.log.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUser applies the provided fields and leaves the rest untouched.
// A new password is rehashed; role and VM reassignments take effect on the
// target's very next request because identity is re-read from the store.
func (h *adminHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be student or admin"})
			return
		}
		user.Role = *req.Role
	}
	if req.AssignedVMs != nil {
		user.AssignedVMs = *req.AssignedVMs
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.log.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		user.PasswordHash = hash
	}

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Failed to update user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *adminHandler) DeleteUser(c *gin.Context) {
	identity := middleware.Identity(c)
	targetID := c.Param("id")

	if !access.CanDeleteUser(identity, targetID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// AssignVMs replaces the target user's VM allow-list.
func (h *adminHandler) AssignVMs(c *gin.Context) {
	var req AssignVMsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VMIDs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vmIds must be an array"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign VMs"})
		return
	}

	user.AssignedVMs = *req.VMIDs

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		h.log.Error("Failed to assign VMs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign VMs"})
		return
	}

	c.JSON(http.StatusOK, user)
}
