package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cognikit/cognikit/internal/asset/application"
	"github.com/cognikit/cognikit/internal/asset/domain"
	"github.com/cognikit/cognikit/pkg/middleware"
)

type AssetHandler struct {
	service *application.Service
}

func NewAssetHandler(service *application.Service) *AssetHandler {
	return &AssetHandler{service: service}
}

func (h *AssetHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/assets")
	{
		v1.GET("/search", h.SearchAssets)
	}
}

// SearchAssets 搜索投资标的：代码、名称、拼音首字母、拼音全拼、基金公司
func (h *AssetHandler) SearchAssets(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	dtos, err := h.service.SearchAssets(c.Request.Context(), domain.SearchParams{
		Query:  q,
		Type:   domain.AssetType(c.Query("type")),
		Market: domain.Market(c.Query("market")),
		Limit:  limit,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos)
}
