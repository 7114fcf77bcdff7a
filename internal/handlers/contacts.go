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

type ContactRequest struct {
	FirstName       string                 `json:"first_name" binding:"required"`
	LastName        string                 `json:"last_name" binding:"required"`
	Email           string                 `json:"email" binding:"omitempty,email"`
	EmailStatus     string                 `json:"email_status"`
	Phone           string                 `json:"phone"`
	Title           string                 `json:"title"`
	Department      string                 `json:"department"`
	IsDecisionMaker bool                   `json:"is_decision_maker"`
	LinkedinURL     string                 `json:"linkedin_url"`
	Status          string                 `json:"status"`
	Source          string                 `json:"source"`
	CompanyID       *uint                  `json:"company_id"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
}

type ContactResponse struct {
	ID              uint                   `json:"id"`
	FirstName       string                 `json:"first_name"`
	LastName        string                 `json:"last_name"`
	Email           string                 `json:"email"`
	EmailStatus     string                 `json:"email_status"`
	Phone           string                 `json:"phone"`
	Title           string                 `json:"title"`
	Department      string                 `json:"department"`
	IsDecisionMaker bool                   `json:"is_decision_maker"`
	LinkedinURL     string                 `json:"linkedin_url"`
	Status          string                 `json:"status"`
	Source          string                 `json:"source"`
	CompanyID       *uint                  `json:"company_id"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	OwnerID         *uint                  `json:"owner_id"`
	StartupRadarID  *string                `json:"startup_radar_id"`
	CreatedAt       string                 `json:"created_at"`
}

func newContactResponse(c models.Contact) ContactResponse {
	return ContactResponse{
		ID:              c.ID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		EmailStatus:     c.EmailStatus,
		Phone:           c.Phone,
		Title:           c.Title,
		Department:      c.Department,
		IsDecisionMaker: c.IsDecisionMaker,
		LinkedinURL:     c.LinkedinURL,
		Status:          c.Status,
		Source:          c.Source,
		CompanyID:       c.CompanyID,
		CustomFields:    c.CustomFields,
		OwnerID:         c.OwnerID,
		StartupRadarID:  c.StartupRadarID,
		CreatedAt:       c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ListContacts(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Contact{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldDefault)

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern, pattern)
	}
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if companyID := ctx.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	var contacts []models.Contact
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&contacts).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	items := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, newContactResponse(c))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateContact(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ContactRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := body.Status
	if status == "" {
		status = "new"
	}

	ownerID := user.ID
	contact := models.Contact{
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Email:           body.Email,
		EmailStatus:     body.EmailStatus,
		Phone:           body.Phone,
		Title:           body.Title,
		Department:      body.Department,
		IsDecisionMaker: body.IsDecisionMaker,
		LinkedinURL:     body.LinkedinURL,
		Status:          status,
		Source:          body.Source,
		CompanyID:       body.CompanyID,
		CustomFields:    datatypes.JSONMap(body.CustomFields),
		OwnerID:         &ownerID,
	}

	if err := db.DB.Create(&contact).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	ctx.JSON(http.StatusCreated, newContactResponse(contact))
}

func GetContact(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contactID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contact models.Contact
	if err := db.DB.First(&contact, contactID).Error; err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	if err := rbac.CheckAccess(contact.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	ctx.JSON(http.StatusOK, newContactResponse(contact))
}

func UpdateContact(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contactID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contact models.Contact
	if err := db.DB.First(&contact, contactID).Error; err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	if err := rbac.CheckAccess(contact.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	var body ContactRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contact.FirstName = body.FirstName
	contact.LastName = body.LastName
	contact.Email = body.Email
	contact.EmailStatus = body.EmailStatus
	contact.Phone = body.Phone
	contact.Title = body.Title
	contact.Department = body.Department
	contact.IsDecisionMaker = body.IsDecisionMaker
	contact.LinkedinURL = body.LinkedinURL
	contact.Source = body.Source
	contact.CompanyID = body.CompanyID
	if body.Status != "" {
		contact.Status = body.Status
	}
	if body.CustomFields != nil {
		contact.CustomFields = datatypes.JSONMap(body.CustomFields)
	}

	if err := db.DB.Save(&contact).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	ctx.JSON(http.StatusOK, newContactResponse(contact))
}

func DeleteContact(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contactID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contact models.Contact
	if err := db.DB.First(&contact, contactID).Error; err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	if err := rbac.CheckAccess(contact.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Contact not found")
		return
	}

	if err := db.DB.Delete(&contact).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
