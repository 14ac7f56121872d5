// Package mysql 自选仓储的 GORM 实现
package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/watchlist/domain"
	"github.com/cognikit/cognikit/pkg/db"
)

type watchlistRepository struct {
	db *db.DB
}

// NewWatchlistRepository 创建自选仓储
func NewWatchlistRepository(database *db.DB) domain.Repository {
	return &watchlistRepository{db: database}
}

func (r *watchlistRepository) CreateGroup(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *watchlistRepository) FindGroupByID(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *watchlistRepository) ListGroups(ctx context.Context, userID string) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order asc, created_at asc").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *watchlistRepository) UpdateGroup(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *watchlistRepository) DeleteGroup(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&domain.Item{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Group{}).Error
	})
}

func (r *watchlistRepository) ReorderGroups(ctx context.Context, userID string, orderedIDs []string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			err := tx.Model(&domain.Group{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort_order", idx).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *watchlistRepository) MaxGroupSortOrder(ctx context.Context, userID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&domain.Group{}).
		Where("user_id = ?", userID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *watchlistRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *watchlistRepository) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *watchlistRepository) FindItem(ctx context.Context, groupID, assetID string) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND asset_id = ?", groupID, assetID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *watchlistRepository) ListItems(ctx context.Context, groupID string) ([]*domain.Item, error) {
	var items []*domain.Item
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("group_id = ?", groupID).
		Order("sort_order asc, created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepository) ListUserItems(ctx context.Context, userID string) ([]*domain.Item, error) {
	var items []*domain.Item
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Joins("JOIN watchlist_groups ON watchlist_groups.id = watchlist_items.group_id").
		Where("watchlist_groups.user_id = ?", userID).
		Order("watchlist_items.group_id asc, watchlist_items.sort_order asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepository) DeleteItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{}).Error
}

func (r *watchlistRepository) DeleteItems(ctx context.Context, groupID string, assetIDs []string) error {
	if len(assetIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("group_id = ? AND asset_id IN ?", groupID, assetIDs).
		Delete(&domain.Item{}).Error
}

func (r *watchlistRepository) MoveItem(ctx context.Context, itemID, targetGroupID string, sortOrder int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"group_id":   targetGroupID,
			"sort_order": sortOrder,
		}).Error
}

func (r *watchlistRepository) MaxItemSortOrder(ctx context.Context, groupID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("group_id = ?", groupID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}
