// Package application 实现自选分组与条目的用例
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	assetapp "github.com/cognikit/cognikit/internal/asset/application"
	"github.com/cognikit/cognikit/internal/watchlist/domain"
	"github.com/cognikit/cognikit/pkg/apperr"
)

// Service 自选应用服务
type Service struct {
	repo   domain.Repository
	assets *assetapp.Service
	logger *slog.Logger
}

// NewService 创建自选服务
func NewService(repo domain.Repository, assets *assetapp.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, assets: assets, logger: logger}
}

// GroupDTO 分组视图
type GroupDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemDTO 条目视图，内嵌资产信息
type ItemDTO struct {
	ID        string             `json:"id"`
	GroupID   string             `json:"groupId"`
	AssetID   string             `json:"assetId"`
	SortOrder int                `json:"sortOrder"`
	CreatedAt time.Time          `json:"createdAt"`
	Asset     *assetapp.AssetDTO `json:"asset,omitempty"`
}

// CreateGroup 创建分组，排序值追加到末尾
func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*GroupDTO, error) {
	max, err := s.repo.MaxGroupSortOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sort order: %w", err)
	}

	now := time.Now()
	group := &domain.Group{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		SortOrder: max + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.InfoContext(ctx, "watchlist group created", "user_id", userID, "group_id", group.ID)
	return toGroupDTO(group), nil
}

// ListGroups 返回用户全部分组，按排序值升序
func (s *Service) ListGroups(ctx context.Context, userID string) ([]*GroupDTO, error) {
	groups, err := s.repo.ListGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	dtos := make([]*GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, toGroupDTO(g))
	}
	return dtos, nil
}

// RenameGroup 重命名分组
func (s *Service) RenameGroup(ctx context.Context, userID, groupID, name string) (*GroupDTO, error) {
	group, err := s.ownedGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	group.Name = name
	group.UpdatedAt = time.Now()
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to rename group: %w", err)
	}
	return toGroupDTO(group), nil
}

// DeleteGroup 删除分组及其全部条目
func (s *Service) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if _, err := s.ownedGroup(ctx, userID, groupID); err != nil {
		return err
	}
	if err := s.repo.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	s.logger.InfoContext(ctx, "watchlist group deleted", "user_id", userID, "group_id", groupID)
	return nil
}

// ReorderGroups 按给定顺序重排用户的分组
func (s *Service) ReorderGroups(ctx context.Context, userID string, orderedIDs []string) error {
	for _, id := range orderedIDs {
		if _, err := s.ownedGroup(ctx, userID, id); err != nil {
			return err
		}
	}
	if err := s.repo.ReorderGroups(ctx, userID, orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder groups: %w", err)
	}
	return nil
}

// ListItems 返回分组内条目及资产信息
func (s *Service) ListItems(ctx context.Context, userID, groupID string) ([]*ItemDTO, error) {
	if _, err := s.ownedGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	dtos := make([]*ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos, nil
}

// ListAllItems 返回用户全部分组的条目，供客户端一次拉取自选全集
func (s *Service) ListAllItems(ctx context.Context, userID string) ([]*ItemDTO, error) {
	items, err := s.repo.ListUserItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user items: %w", err)
	}
	dtos := make([]*ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos, nil
}

// AddItem 向分组添加资产，分组内同一资产不可重复
func (s *Service) AddItem(ctx context.Context, userID, groupID, assetID string) (*ItemDTO, error) {
	if _, err := s.ownedGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}
	exists, err := s.assets.ValidateExists(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate asset: %w", err)
	}
	if !exists {
		return nil, apperr.ErrAssetNotFound
	}
	if _, err := s.repo.FindItem(ctx, groupID, assetID); err == nil {
		return nil, apperr.ErrWatchlistDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}

	max, err := s.repo.MaxItemSortOrder(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sort order: %w", err)
	}
	item := &domain.Item{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		AssetID:   assetID,
		SortOrder: max + 1,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.logger.InfoContext(ctx, "watchlist item added",
		"user_id", userID, "group_id", groupID, "asset_id", assetID)
	return toItemDTO(item), nil
}

// RemoveItem 从分组移除条目
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return nil
}

// RemoveItems 批量移除分组内的资产
func (s *Service) RemoveItems(ctx context.Context, userID, groupID string, assetIDs []string) error {
	if _, err := s.ownedGroup(ctx, userID, groupID); err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, groupID, assetIDs); err != nil {
		return fmt.Errorf("failed to remove items: %w", err)
	}
	return nil
}

// MoveItem 将条目移动到另一分组，目标分组内追加到末尾
func (s *Service) MoveItem(ctx context.Context, userID, itemID, targetGroupID string) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if _, err := s.ownedGroup(ctx, userID, targetGroupID); err != nil {
		return err
	}
	if _, err := s.repo.FindItem(ctx, targetGroupID, item.AssetID); err == nil {
		return apperr.ErrWatchlistDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check duplicate: %w", err)
	}

	max, err := s.repo.MaxItemSortOrder(ctx, targetGroupID)
	if err != nil {
		return fmt.Errorf("failed to resolve sort order: %w", err)
	}
	if err := s.repo.MoveItem(ctx, item.ID, targetGroupID, max+1); err != nil {
		return fmt.Errorf("failed to move item: %w", err)
	}
	return nil
}

func (s *Service) ownedGroup(ctx context.Context, userID, groupID string) (*domain.Group, error) {
	group, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrWatchlistGroupNotFound
		}
		return nil, fmt.Errorf("failed to look up group: %w", err)
	}
	if group.UserID != userID {
		return nil, apperr.ErrWatchlistForbidden
	}
	return group, nil
}

func (s *Service) ownedItem(ctx context.Context, userID, itemID string) (*domain.Item, error) {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrWatchlistItemNotFound
		}
		return nil, fmt.Errorf("failed to look up item: %w", err)
	}
	if _, err := s.ownedGroup(ctx, userID, item.GroupID); err != nil {
		return nil, err
	}
	return item, nil
}

func toGroupDTO(group *domain.Group) *GroupDTO {
	return &GroupDTO{
		ID:        group.ID,
		Name:      group.Name,
		SortOrder: group.SortOrder,
		CreatedAt: group.CreatedAt,
	}
}

func toItemDTO(item *domain.Item) *ItemDTO {
	dto := &ItemDTO{
		ID:        item.ID,
		GroupID:   item.GroupID,
		AssetID:   item.AssetID,
		SortOrder: item.SortOrder,
		CreatedAt: item.CreatedAt,
	}
	if item.Asset != nil {
		dto.Asset = assetapp.ToAssetDTO(item.Asset)
	}
	return dto
}
