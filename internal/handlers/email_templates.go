package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
	"gorm.io/datatypes"
)

type EmailTemplateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Subject   string   `json:"subject" binding:"required"`
	Body      string   `json:"body" binding:"required"`
	Variables []string `json:"variables"`
}

type EmailTemplateResponse struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"`
	OwnerID   uint     `json:"owner_id"`
	CreatedAt string   `json:"created_at"`
}

func newEmailTemplateResponse(t models.EmailTemplate) EmailTemplateResponse {
	var variables []string
	if len(t.Variables) > 0 {
		_ = json.Unmarshal(t.Variables, &variables)
	}
	return EmailTemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Body:      t.Body,
		Variables: variables,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func marshalTemplateVariables(variables []string) datatypes.JSON {
	if variables == nil {
		variables = []string{}
	}
	raw, _ := json.Marshal(variables)
	return datatypes.JSON(raw)
}

func ListEmailTemplates(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.EmailTemplate{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldDefault)

	if search := ctx.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(subject) LIKE LOWER(?)", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates"})
		return
	}

	var templates []models.EmailTemplate
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&templates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates"})
		return
	}

	items := make([]EmailTemplateResponse, 0, len(templates))
	for _, t := range templates {
		items = append(items, newEmailTemplateResponse(t))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateEmailTemplate(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body EmailTemplateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	template := models.EmailTemplate{
		Name:      body.Name,
		Subject:   body.Subject,
		Body:      body.Body,
		Variables: marshalTemplateVariables(body.Variables),
		OwnerID:   user.ID,
	}

	if err := db.DB.Create(&template).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	ctx.JSON(http.StatusCreated, newEmailTemplateResponse(template))
}

func GetEmailTemplate(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	templateID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var template models.EmailTemplate
	if err := db.DB.First(&template, templateID).Error; err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	if err := rbac.CheckAccess(&template.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	ctx.JSON(http.StatusOK, newEmailTemplateResponse(template))
}

func UpdateEmailTemplate(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	templateID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var template models.EmailTemplate
	if err := db.DB.First(&template, templateID).Error; err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	if err := rbac.CheckAccess(&template.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	var body EmailTemplateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	template.Name = body.Name
	template.Subject = body.Subject
	template.Body = body.Body
	if body.Variables != nil {
		template.Variables = marshalTemplateVariables(body.Variables)
	}

	if err := db.DB.Save(&template).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}

	ctx.JSON(http.StatusOK, newEmailTemplateResponse(template))
}

func DeleteEmailTemplate(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	templateID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var template models.EmailTemplate
	if err := db.DB.First(&template, templateID).Error; err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	if err := rbac.CheckAccess(&template.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Template not found")
		return
	}

	if err := db.DB.Delete(&template).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
