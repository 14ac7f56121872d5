// Package http 自选分组与条目的 HTTP 接口
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cognikit/cognikit/internal/watchlist/application"
	"github.com/cognikit/cognikit/pkg/middleware"
)

// WatchlistHandler 自选接口处理器
type WatchlistHandler struct {
	service *application.Service
}

// NewWatchlistHandler 创建自选接口处理器
func NewWatchlistHandler(service *application.Service) *WatchlistHandler {
	return &WatchlistHandler{service: service}
}

// RegisterRoutes 注册路由，全部需要登录
func (h *WatchlistHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	v1 := r.Group("/v1/watchlist", auth)
	{
		v1.GET("/groups", h.ListGroups)
		v1.POST("/groups", h.CreateGroup)
		v1.PUT("/groups/reorder", h.ReorderGroups)
		v1.PUT("/groups/:groupId", h.RenameGroup)
		v1.DELETE("/groups/:groupId", h.DeleteGroup)

		v1.GET("/items", h.ListAllItems)
		v1.GET("/groups/:groupId/items", h.ListItems)
		v1.POST("/groups/:groupId/items", h.AddItem)
		v1.POST("/groups/:groupId/items/batch-remove", h.RemoveItems)
		v1.DELETE("/items/:itemId", h.RemoveItem)
		v1.PUT("/items/:itemId/move", h.MoveItem)
	}
}

// ListGroups 返回当前用户的分组
func (h *WatchlistHandler) ListGroups(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	groups, err := h.service.ListGroups(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

type groupRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// CreateGroup 创建分组
func (h *WatchlistHandler) CreateGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	group, err := h.service.CreateGroup(c.Request.Context(), userID, req.Name)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// RenameGroup 重命名分组
func (h *WatchlistHandler) RenameGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	group, err := h.service.RenameGroup(c.Request.Context(), userID, c.Param("groupId"), req.Name)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroup 删除分组及其条目
func (h *WatchlistHandler) DeleteGroup(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := h.service.DeleteGroup(c.Request.Context(), userID, c.Param("groupId")); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

type reorderRequest struct {
	GroupIDs []string `json:"groupIds" binding:"required,min=1"`
}

// ReorderGroups 重排分组
func (h *WatchlistHandler) ReorderGroups(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	if err := h.service.ReorderGroups(c.Request.Context(), userID, req.GroupIDs); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "groups reordered"})
}

// ListAllItems 返回当前用户全部分组的条目
func (h *WatchlistHandler) ListAllItems(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	items, err := h.service.ListAllItems(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListItems 返回分组内条目
func (h *WatchlistHandler) ListItems(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	items, err := h.service.ListItems(c.Request.Context(), userID, c.Param("groupId"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addItemRequest struct {
	AssetID string `json:"assetId" binding:"required"`
}

// AddItem 向分组添加资产
func (h *WatchlistHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	item, err := h.service.AddItem(c.Request.Context(), userID, c.Param("groupId"), req.AssetID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveItem 移除单个条目
func (h *WatchlistHandler) RemoveItem(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := h.service.RemoveItem(c.Request.Context(), userID, c.Param("itemId")); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

type batchRemoveRequest struct {
	AssetIDs []string `json:"assetIds" binding:"required,min=1"`
}

// RemoveItems 批量移除分组内资产
func (h *WatchlistHandler) RemoveItems(c *gin.Context) {
	var req batchRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	if err := h.service.RemoveItems(c.Request.Context(), userID, c.Param("groupId"), req.AssetIDs); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "items removed"})
}

type moveItemRequest struct {
	TargetGroupID string `json:"targetGroupId" binding:"required"`
}

// MoveItem 将条目移动到其他分组
func (h *WatchlistHandler) MoveItem(c *gin.Context) {
	var req moveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.CurrentUserID(c)
	if err := h.service.MoveItem(c.Request.Context(), userID, c.Param("itemId"), req.TargetGroupID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item moved"})
}
