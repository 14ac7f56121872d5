package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cognikit/cognikit/internal/datasync/application"
	"github.com/cognikit/cognikit/pkg/middleware"
)

type SyncHandler struct {
	service *application.Service
}

func NewSyncHandler(service *application.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

func (h *SyncHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	v1 := r.Group("/v1/sync", auth)
	{
		v1.GET("/stats", h.GetStats)
	}
}

// GetStats 同步诊断信息：资产总数与最近同步时间
func (h *SyncHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
