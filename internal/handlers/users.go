package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/types"
	"github.com/hervefr78/fga-crm/internal/utils"
)

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ToggleUserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListUsers returns all users. Admin only (enforced by the router).
func ListUsers(ctx *gin.Context) {
	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.User{})

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}
	if role := ctx.Query("role"); role != "" {
		if !models.ValidRole(role) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid role"})
			return
		}
		query = query.Where("role = ?", role)
	}
	switch ctx.Query("is_active") {
	case "true":
		query = query.Where("is_active = ?", true)
	case "false":
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	items := make([]types.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, types.NewUserResponse(u))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func GetUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		respondEntityError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

// UpdateUserRole changes a user's role. Admins cannot change their own role,
// and the last remaining admin cannot be demoted.
func UpdateUserRole(ctx *gin.Context) {
	admin, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateUserRoleRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !models.ValidRole(body.Role) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid role"})
		return
	}

	if userID == admin.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot change your own role"})
		return
	}

	var target models.User
	if err := db.DB.First(&target, userID).Error; err != nil {
		respondEntityError(ctx, err, "User not found")
		return
	}

	if target.Role == models.RoleAdmin && body.Role != models.RoleAdmin {
		var adminCount int64
		if err := db.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
			log.Printf("Failed to count admins: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if adminCount <= 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote the last administrator"})
			return
		}
	}

	if err := db.DB.Model(&target).Update("role", body.Role).Error; err != nil {
		log.Printf("Failed to update user role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	target.Role = body.Role
	ctx.JSON(http.StatusOK, types.NewUserResponse(target))
}

// ToggleUserActive activates or deactivates a user. Admins cannot deactivate
// themselves.
func ToggleUserActive(ctx *gin.Context) {
	admin, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body ToggleUserActiveRequest
	if err := ctx.BindJSON(&body); err != nil || body.IsActive == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if userID == admin.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot deactivate yourself"})
		return
	}

	var target models.User
	if err := db.DB.First(&target, userID).Error; err != nil {
		respondEntityError(ctx, err, "User not found")
		return
	}

	if err := db.DB.Model(&target).Update("is_active", *body.IsActive).Error; err != nil {
		log.Printf("Failed to toggle user active state: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	target.IsActive = *body.IsActive
	ctx.JSON(http.StatusOK, types.NewUserResponse(target))
}
