package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
	"gorm.io/datatypes"
)

type DealRequest struct {
	Title             string                 `json:"title" binding:"required"`
	Description       string                 `json:"description"`
	Stage             string                 `json:"stage"`
	Amount            *float64               `json:"amount"`
	Currency          string                 `json:"currency"`
	Probability       *int                   `json:"probability"`
	ExpectedCloseDate *time.Time             `json:"expected_close_date"`
	LossReason        string                 `json:"loss_reason"`
	Priority          string                 `json:"priority"`
	Position          int                    `json:"position"`
	CompanyID         *uint                  `json:"company_id"`
	ContactID         *uint                  `json:"contact_id"`
	CustomFields      map[string]interface{} `json:"custom_fields"`
}

type DealResponse struct {
	ID                uint                   `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Stage             string                 `json:"stage"`
	Amount            *float64               `json:"amount"`
	Currency          string                 `json:"currency"`
	Probability       *int                   `json:"probability"`
	ExpectedCloseDate *time.Time             `json:"expected_close_date"`
	LossReason        string                 `json:"loss_reason"`
	Priority          string                 `json:"priority"`
	Position          int                    `json:"position"`
	CompanyID         *uint                  `json:"company_id"`
	ContactID         *uint                  `json:"contact_id"`
	CustomFields      map[string]interface{} `json:"custom_fields"`
	OwnerID           *uint                  `json:"owner_id"`
	CreatedAt         string                 `json:"created_at"`
}

func newDealResponse(d models.Deal) DealResponse {
	return DealResponse{
		ID:                d.ID,
		Title:             d.Title,
		Description:       d.Description,
		Stage:             d.Stage,
		Amount:            d.Amount,
		Currency:          d.Currency,
		Probability:       d.Probability,
		ExpectedCloseDate: d.ExpectedCloseDate,
		LossReason:        d.LossReason,
		Priority:          d.Priority,
		Position:          d.Position,
		CompanyID:         d.CompanyID,
		ContactID:         d.ContactID,
		CustomFields:      d.CustomFields,
		OwnerID:           d.OwnerID,
		CreatedAt:         d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ListDeals(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Deal{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldDefault)

	if stage := ctx.Query("stage"); stage != "" {
		if !models.ValidDealStage(stage) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid deal stage"})
			return
		}
		query = query.Where("stage = ?", stage)
	}
	if companyID := ctx.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deals"})
		return
	}

	var deals []models.Deal
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&deals).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deals"})
		return
	}

	items := make([]DealResponse, 0, len(deals))
	for _, d := range deals {
		items = append(items, newDealResponse(d))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateDeal(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body DealRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	stage := body.Stage
	if stage == "" {
		stage = "new"
	}
	if !models.ValidDealStage(stage) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid deal stage"})
		return
	}

	currency := body.Currency
	if currency == "" {
		currency = "EUR"
	}
	priority := body.Priority
	if priority == "" {
		priority = "medium"
	}

	ownerID := user.ID
	deal := models.Deal{
		Title:             body.Title,
		Description:       body.Description,
		Stage:             stage,
		Amount:            body.Amount,
		Currency:          currency,
		Probability:       body.Probability,
		ExpectedCloseDate: body.ExpectedCloseDate,
		LossReason:        body.LossReason,
		Priority:          priority,
		Position:          body.Position,
		CompanyID:         body.CompanyID,
		ContactID:         body.ContactID,
		CustomFields:      datatypes.JSONMap(body.CustomFields),
		OwnerID:           &ownerID,
	}

	if err := db.DB.Create(&deal).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deal"})
		return
	}

	ctx.JSON(http.StatusCreated, newDealResponse(deal))
}

func GetDeal(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dealID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deal models.Deal
	if err := db.DB.First(&deal, dealID).Error; err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	if err := rbac.CheckAccess(deal.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	ctx.JSON(http.StatusOK, newDealResponse(deal))
}

func UpdateDeal(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dealID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deal models.Deal
	if err := db.DB.First(&deal, dealID).Error; err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	if err := rbac.CheckAccess(deal.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	var body DealRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Stage != "" && body.Stage != deal.Stage {
		if !models.ValidDealStage(body.Stage) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid deal stage"})
			return
		}
		now := time.Now()
		deal.Stage = body.Stage
		deal.StageChangedAt = &now
		if body.Stage == "won" || body.Stage == "lost" {
			deal.ActualCloseDate = &now
		}
	}

	deal.Title = body.Title
	deal.Description = body.Description
	deal.Amount = body.Amount
	deal.Probability = body.Probability
	deal.ExpectedCloseDate = body.ExpectedCloseDate
	deal.LossReason = body.LossReason
	deal.Position = body.Position
	deal.CompanyID = body.CompanyID
	deal.ContactID = body.ContactID
	if body.Currency != "" {
		deal.Currency = body.Currency
	}
	if body.Priority != "" {
		deal.Priority = body.Priority
	}
	if body.CustomFields != nil {
		deal.CustomFields = datatypes.JSONMap(body.CustomFields)
	}

	if err := db.DB.Save(&deal).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deal"})
		return
	}

	ctx.JSON(http.StatusOK, newDealResponse(deal))
}

func DeleteDeal(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dealID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deal models.Deal
	if err := db.DB.First(&deal, dealID).Error; err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	if err := rbac.CheckAccess(deal.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Deal not found")
		return
	}

	if err := db.DB.Delete(&deal).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete deal"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
