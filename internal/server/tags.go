package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/kpi/internal/serializer"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
)

func (s *Server) ListTags(c *gin.Context) {
	resp, err := s.tagSvc.List(c.Request.Context(), tagdomain.ListRequest{
		Pagination: paginationFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	l := serializer.NewLinker(c.Request)
	items := make([]serializer.TagListItem, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		items = append(items, serializer.NewTagListItem(l, t))
	}
	c.JSON(http.StatusOK, serializer.NewPage(l, items, resp.PageInfo))
}

// GetTag lists only the tagged assets and collections owned by the caller.
func (s *Server) GetTag(c *gin.Context) {
	ctx := c.Request.Context()
	tag, err := s.tagSvc.GetByName(ctx, c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	owner := ownerID(c)
	assets, err := s.assetSvc.ListByTag(ctx, owner, tag.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	collections, err := s.collectionSvc.ListByTag(ctx, owner, tag.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.NewTag(serializer.NewLinker(c.Request), tag, assets, collections))
}
