package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	"github.com/smallbiznis/kpi/internal/serializer"
)

const resourceSurveyAsset = "survey_asset"

func (s *Server) ListAssets(c *gin.Context) {
	resp, err := s.assetSvc.List(c.Request.Context(), ownerID(c), assetdomain.ListRequest{
		Pagination: paginationFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	l := serializer.NewLinker(c.Request)
	items := make([]serializer.SurveyAssetListItem, 0, len(resp.Assets))
	for _, a := range resp.Assets {
		items = append(items, serializer.NewSurveyAssetListItem(l, a))
	}
	c.JSON(http.StatusOK, serializer.NewPage(l, items, resp.PageInfo))
}

func (s *Server) CreateAsset(c *gin.Context) {
	var body serializer.SurveyAssetWrite
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
	asset, err := s.assetSvc.Create(ctx, ownerID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceSurveyAsset, "create")

	c.JSON(http.StatusCreated, serializer.NewSurveyAsset(serializer.NewLinker(c.Request), asset))
}

func (s *Server) GetAsset(c *gin.Context) {
	asset, err := s.assetSvc.Get(c.Request.Context(), ownerID(c), c.Param("uid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.NewSurveyAsset(serializer.NewLinker(c.Request), asset))
}

func (s *Server) ReplaceAsset(c *gin.Context) {
	s.updateAsset(c, false)
}

func (s *Server) PatchAsset(c *gin.Context) {
	s.updateAsset(c, true)
}

func (s *Server) updateAsset(c *gin.Context, partial bool) {
	var body serializer.SurveyAssetWrite
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, err := body.ToUpdate(partial)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	asset, err := s.assetSvc.Update(ctx, ownerID(c), c.Param("uid"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceSurveyAsset, "update")

	c.JSON(http.StatusOK, serializer.NewSurveyAsset(serializer.NewLinker(c.Request), asset))
}
