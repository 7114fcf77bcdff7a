package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetIDParam parses the :id path parameter of the current route.
func GetIDParam(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "id")
}

// GetCompanyIDParam parses the :company_id path parameter.
func GetCompanyIDParam(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "company_id")
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("missing " + name + " parameter")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}

	return uint(id), nil
}

// Pagination holds the normalized page/size query parameters.
type Pagination struct {
	Page int
	Size int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

func (p Pagination) Pages(total int64) int {
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// GetPagination reads page and size from the query string, clamping size to
// [1,100] and page to >= 1.
func GetPagination(ctx *gin.Context) Pagination {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(ctx.DefaultQuery("size", "25"))
	if err != nil || size < 1 {
		size = 25
	}
	if size > 100 {
		size = 100
	}

	return Pagination{Page: page, Size: size}
}
