package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/kpi/internal/serializer"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
)

const pageSizeParam = "page_size"

// paginationFromQuery reads the cursor and page size. A malformed page size
// falls back to the configured default.
func paginationFromQuery(c *gin.Context) pagination.Pagination {
	return pagination.Pagination{
		PageToken: strings.TrimSpace(c.Query(serializer.PageTokenParam)),
		PageSize:  parseOptionalInt(c.Query(pageSizeParam)),
	}
}

func parseOptionalInt(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return parsed
}
