package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
)

// searchLimit caps results per entity kind for the global search box.
const searchLimit = 10

type SearchResponse struct {
	Companies []CompanyResponse `json:"companies"`
	Contacts  []ContactResponse `json:"contacts"`
	Deals     []DealResponse    `json:"deals"`
}

// GlobalSearch looks up the query across companies, contacts and deals,
// visibility-scoped like the list endpoints.
func GlobalSearch(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	q := ctx.Query("q")
	if q == "" {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Missing search query"})
		return
	}
	pattern := "%" + q + "%"

	response := SearchResponse{
		Companies: []CompanyResponse{},
		Contacts:  []ContactResponse{},
		Deals:     []DealResponse{},
	}

	var companies []models.Company
	companyQuery := rbac.ScopeQuery(db.DB.Model(&models.Company{}), user, rbac.OwnerFieldDefault)
	if err := companyQuery.
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(website) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").Limit(searchLimit).Find(&companies).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	for _, c := range companies {
		response.Companies = append(response.Companies, newCompanyResponse(c))
	}

	var contacts []models.Contact
	contactQuery := rbac.ScopeQuery(db.DB.Model(&models.Contact{}), user, rbac.OwnerFieldDefault)
	if err := contactQuery.
		Where("LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern, pattern).
		Order("created_at DESC").Limit(searchLimit).Find(&contacts).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	for _, c := range contacts {
		response.Contacts = append(response.Contacts, newContactResponse(c))
	}

	var deals []models.Deal
	dealQuery := rbac.ScopeQuery(db.DB.Model(&models.Deal{}), user, rbac.OwnerFieldDefault)
	if err := dealQuery.
		Where("LOWER(title) LIKE LOWER(?)", pattern).
		Order("created_at DESC").Limit(searchLimit).Find(&deals).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	for _, d := range deals {
		response.Deals = append(response.Deals, newDealResponse(d))
	}

	ctx.JSON(http.StatusOK, response)
}
