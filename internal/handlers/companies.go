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

type CompanyRequest struct {
	Name         string                 `json:"name" binding:"required"`
	Domain       string                 `json:"domain"`
	Website      string                 `json:"website"`
	Description  string                 `json:"description"`
	Industry     string                 `json:"industry"`
	SizeRange    string                 `json:"size_range"`
	Country      string                 `json:"country"`
	City         string                 `json:"city"`
	Phone        string                 `json:"phone"`
	LinkedinURL  string                 `json:"linkedin_url"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

type CompanyResponse struct {
	ID             uint                   `json:"id"`
	Name           string                 `json:"name"`
	Domain         string                 `json:"domain"`
	Website        string                 `json:"website"`
	Description    string                 `json:"description"`
	Industry       string                 `json:"industry"`
	SizeRange      string                 `json:"size_range"`
	Country        string                 `json:"country"`
	City           string                 `json:"city"`
	Phone          string                 `json:"phone"`
	LinkedinURL    string                 `json:"linkedin_url"`
	CustomFields   map[string]interface{} `json:"custom_fields"`
	OwnerID        *uint                  `json:"owner_id"`
	StartupRadarID *string                `json:"startup_radar_id"`
	CreatedAt      string                 `json:"created_at"`
}

func newCompanyResponse(c models.Company) CompanyResponse {
	return CompanyResponse{
		ID:             c.ID,
		Name:           c.Name,
		Domain:         c.Domain,
		Website:        c.Website,
		Description:    c.Description,
		Industry:       c.Industry,
		SizeRange:      c.SizeRange,
		Country:        c.Country,
		City:           c.City,
		Phone:          c.Phone,
		LinkedinURL:    c.LinkedinURL,
		CustomFields:   c.CustomFields,
		OwnerID:        c.OwnerID,
		StartupRadarID: c.StartupRadarID,
		CreatedAt:      c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ListCompanies(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Company{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldDefault)

	if search := ctx.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if industry := ctx.Query("industry"); industry != "" {
		query = query.Where("industry = ?", industry)
	}
	if sizeRange := ctx.Query("size_range"); sizeRange != "" {
		query = query.Where("size_range = ?", sizeRange)
	}
	if country := ctx.Query("country"); country != "" {
		query = query.Where("LOWER(country) LIKE LOWER(?)", "%"+country+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve companies"})
		return
	}

	var companies []models.Company
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&companies).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve companies"})
		return
	}

	items := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		items = append(items, newCompanyResponse(c))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateCompany(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CompanyRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ownerID := user.ID
	company := models.Company{
		Name:         body.Name,
		Domain:       body.Domain,
		Website:      body.Website,
		Description:  body.Description,
		Industry:     body.Industry,
		SizeRange:    body.SizeRange,
		Country:      body.Country,
		City:         body.City,
		Phone:        body.Phone,
		LinkedinURL:  body.LinkedinURL,
		CustomFields: datatypes.JSONMap(body.CustomFields),
		OwnerID:      &ownerID,
	}

	if err := db.DB.Create(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	ctx.JSON(http.StatusCreated, newCompanyResponse(company))
}

func GetCompany(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	companyID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.Company
	if err := db.DB.First(&company, companyID).Error; err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	if err := rbac.CheckAccess(company.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	ctx.JSON(http.StatusOK, newCompanyResponse(company))
}

func UpdateCompany(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	companyID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.Company
	if err := db.DB.First(&company, companyID).Error; err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	if err := rbac.CheckAccess(company.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	var body CompanyRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	company.Name = body.Name
	company.Domain = body.Domain
	company.Website = body.Website
	company.Description = body.Description
	company.Industry = body.Industry
	company.SizeRange = body.SizeRange
	company.Country = body.Country
	company.City = body.City
	company.Phone = body.Phone
	company.LinkedinURL = body.LinkedinURL
	if body.CustomFields != nil {
		company.CustomFields = datatypes.JSONMap(body.CustomFields)
	}

	if err := db.DB.Save(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		return
	}

	ctx.JSON(http.StatusOK, newCompanyResponse(company))
}

func DeleteCompany(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	companyID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.Company
	if err := db.DB.First(&company, companyID).Error; err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	if err := rbac.CheckAccess(company.OwnerID, user); err != nil {
		respondEntityError(ctx, err, "Company not found")
		return
	}

	if err := db.DB.Delete(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
