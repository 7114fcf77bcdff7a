package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
	"gorm.io/gorm"
)

// listResponse is the pagination envelope shared by every list endpoint.
func listResponse(items interface{}, total int64, p utils.Pagination) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  p.Page,
		"size":  p.Size,
		"pages": p.Pages(total),
	}
}

// respondEntityError maps the common lookup/access failures of detail routes.
func respondEntityError(ctx *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	case errors.Is(err, rbac.ErrAccessDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access to this resource is not allowed"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
