package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	"github.com/smallbiznis/kpi/internal/serializer"
)

const resourceCollection = "collection"

func (s *Server) ListCollections(c *gin.Context) {
	resp, err := s.collectionSvc.List(c.Request.Context(), ownerID(c), collectiondomain.ListRequest{
		Pagination: paginationFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	l := serializer.NewLinker(c.Request)
	items := make([]serializer.CollectionListItem, 0, len(resp.Collections))
	for _, coll := range resp.Collections {
		items = append(items, serializer.NewCollectionListItem(l, coll))
	}
	c.JSON(http.StatusOK, serializer.NewPage(l, items, resp.PageInfo))
}

func (s *Server) CreateCollection(c *gin.Context) {
	var body serializer.CollectionWrite
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, err := body.ToCreate()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	coll, err := s.collectionSvc.Create(ctx, ownerID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceCollection, "create")

	c.JSON(http.StatusCreated, serializer.NewCollection(serializer.NewLinker(c.Request), coll, nil))
}

func (s *Server) GetCollection(c *gin.Context) {
	coll, err := s.collectionSvc.Get(c.Request.Context(), ownerID(c), c.Param("uid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.renderCollection(c, http.StatusOK, coll)
}

func (s *Server) ReplaceCollection(c *gin.Context) {
	s.updateCollection(c)
}

func (s *Server) PatchCollection(c *gin.Context) {
	s.updateCollection(c)
}

// updateCollection serves PUT and PATCH alike: no collection field is required.
func (s *Server) updateCollection(c *gin.Context) {
	var body serializer.CollectionWrite
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, err := body.ToUpdate()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	coll, err := s.collectionSvc.Update(ctx, ownerID(c), c.Param("uid"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceCollection, "update")

	s.renderCollection(c, http.StatusOK, coll)
}

func (s *Server) renderCollection(c *gin.Context, status int, coll *collectiondomain.Collection) {
	assets, err := s.assetSvc.ListByCollection(c.Request.Context(), coll.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(status, serializer.NewCollection(serializer.NewLinker(c.Request), coll, assets))
}
