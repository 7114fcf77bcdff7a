package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/internal/radarsync"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/startupradar"
	"github.com/hervefr78/fga-crm/internal/utils"
	"gorm.io/gorm"
)

// Radar is the shared Startup Radar syncer, wired in by the router.
var Radar *radarsync.Syncer

// TriggerRadarSync runs a full Startup Radar reconciliation. The run itself
// is synchronous; overlapping requests get a 409.
func TriggerRadarSync(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := Radar.FullSync(ctx.Request.Context(), user)
	if err != nil {
		var authErr *startupradar.AuthError
		switch {
		case errors.Is(err, radarsync.ErrSyncInProgress):
			ctx.JSON(http.StatusConflict, gin.H{"error": "A sync is already in progress"})
		case errors.As(err, &authErr):
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Startup Radar authentication failed", "result": result})
		default:
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "result": result})
		}
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetRadarSyncStatus reports the outcome of the most recent sync run.
func GetRadarSyncStatus(ctx *gin.Context) {
	last, ok := Radar.LastResult()
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"last_result": nil})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"last_result": last})
}

// TriggerCompanyAudit imports the Startup Radar audits for one company.
func TriggerCompanyAudit(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	companyID, err := utils.GetCompanyIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := Radar.TriggerCompanyAudit(ctx.Request.Context(), companyID, user)
	if err != nil {
		var authErr *startupradar.AuthError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		case errors.Is(err, radarsync.ErrNoRadarLink):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Company is not linked to Startup Radar"})
		case errors.Is(err, radarsync.ErrInvestorAudit):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Audits are not available for investor companies"})
		case errors.Is(err, rbac.ErrAccessDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Access to this resource is not allowed"})
		case errors.As(err, &authErr):
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Startup Radar authentication failed"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import audits"})
		}
		return
	}

	ctx.JSON(http.StatusOK, outcome)
}
