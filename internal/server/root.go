package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/kpi/internal/serializer"
)

type apiRoot struct {
	SurveyAssets string `json:"survey_assets"`
	Collections  string `json:"collections"`
	Tags         string `json:"tags"`
	Users        string `json:"users"`
}

// APIRoot links the browsable resource lists.
func (s *Server) APIRoot(c *gin.Context) {
	l := serializer.NewLinker(c.Request)
	c.JSON(http.StatusOK, apiRoot{
		SurveyAssets: l.AssetList(),
		Collections:  l.CollectionList(),
		Tags:         l.TagList(),
		Users:        l.URL(serializer.PathUsers),
	})
}
