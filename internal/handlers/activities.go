package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
	"gorm.io/datatypes"
)

type ActivityRequest struct {
	Type      string                 `json:"type" binding:"required"`
	Subject   string                 `json:"subject"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	ContactID *uint                  `json:"contact_id"`
	CompanyID *uint                  `json:"company_id"`
	DealID    *uint                  `json:"deal_id"`
}

type ActivityResponse struct {
	ID        uint                   `json:"id"`
	Type      string                 `json:"type"`
	Subject   string                 `json:"subject"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	ContactID *uint                  `json:"contact_id"`
	CompanyID *uint                  `json:"company_id"`
	DealID    *uint                  `json:"deal_id"`
	UserID    uint                   `json:"user_id"`
	CreatedAt string                 `json:"created_at"`
}

func newActivityResponse(a models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		Type:      a.Type,
		Subject:   a.Subject,
		Content:   a.Content,
		Metadata:  a.Metadata,
		ContactID: a.ContactID,
		CompanyID: a.CompanyID,
		DealID:    a.DealID,
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ListActivities(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Activity{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldUserID)

	if activityType := ctx.Query("type"); activityType != "" {
		query = query.Where("type = ?", activityType)
	}
	if companyID := ctx.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if contactID := ctx.Query("contact_id"); contactID != "" {
		query = query.Where("contact_id = ?", contactID)
	}
	if dealID := ctx.Query("deal_id"); dealID != "" {
		query = query.Where("deal_id = ?", dealID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	var activities []models.Activity
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&activities).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	items := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, newActivityResponse(a))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateActivity(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ActivityRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	activity := models.Activity{
		Type:      body.Type,
		Subject:   body.Subject,
		Content:   body.Content,
		Metadata:  datatypes.JSONMap(body.Metadata),
		ContactID: body.ContactID,
		CompanyID: body.CompanyID,
		DealID:    body.DealID,
		UserID:    user.ID,
	}

	if err := db.DB.Create(&activity).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create activity"})
		return
	}

	ctx.JSON(http.StatusCreated, newActivityResponse(activity))
}

func GetActivity(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var activity models.Activity
	if err := db.DB.First(&activity, activityID).Error; err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	if err := rbac.CheckAccess(&activity.UserID, user); err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	ctx.JSON(http.StatusOK, newActivityResponse(activity))
}

func UpdateActivity(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var activity models.Activity
	if err := db.DB.First(&activity, activityID).Error; err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	if err := rbac.CheckAccess(&activity.UserID, user); err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	var body ActivityRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	activity.Type = body.Type
	activity.Subject = body.Subject
	activity.Content = body.Content
	activity.ContactID = body.ContactID
	activity.CompanyID = body.CompanyID
	activity.DealID = body.DealID
	if body.Metadata != nil {
		activity.Metadata = datatypes.JSONMap(body.Metadata)
	}

	if err := db.DB.Save(&activity).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update activity"})
		return
	}

	ctx.JSON(http.StatusOK, newActivityResponse(activity))
}

func DeleteActivity(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var activity models.Activity
	if err := db.DB.First(&activity, activityID).Error; err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	if err := rbac.CheckAccess(&activity.UserID, user); err != nil {
		respondEntityError(ctx, err, "Activity not found")
		return
	}

	if err := db.DB.Delete(&activity).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete activity"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
