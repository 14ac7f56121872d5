// Package domain 自选分组与自选条目的领域模型
package domain

import (
	"context"
	"time"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
)

// Group 自选分组
type Group struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);index;not null"`
	Name      string    `gorm:"column:name;type:varchar(50);not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Group) TableName() string {
	return "watchlist_groups"
}

// Item 自选条目，分组内同一资产唯一
type Item struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	GroupID   string    `gorm:"column:group_id;type:varchar(36);uniqueIndex:idx_group_asset;not null"`
	AssetID   string    `gorm:"column:asset_id;type:varchar(36);uniqueIndex:idx_group_asset;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`

	Asset *assetdomain.Asset `gorm:"foreignKey:AssetID"`
}

func (Item) TableName() string {
	return "watchlist_items"
}

// Repository 自选仓储
type Repository interface {
	CreateGroup(ctx context.Context, group *Group) error
	FindGroupByID(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context, userID string) ([]*Group, error)
	UpdateGroup(ctx context.Context, group *Group) error
	// DeleteGroup 删除分组及其全部条目。
	DeleteGroup(ctx context.Context, id string) error
	// ReorderGroups 按给定顺序重排用户的分组，单事务内完成。
	ReorderGroups(ctx context.Context, userID string, orderedIDs []string) error
	MaxGroupSortOrder(ctx context.Context, userID string) (int, error)

	CreateItem(ctx context.Context, item *Item) error
	FindItemByID(ctx context.Context, id string) (*Item, error)
	FindItem(ctx context.Context, groupID, assetID string) (*Item, error)
	// ListItems 返回分组内条目，预加载资产信息。
	ListItems(ctx context.Context, groupID string) ([]*Item, error)
	// ListUserItems 返回用户全部分组的条目，预加载资产信息。
	ListUserItems(ctx context.Context, userID string) ([]*Item, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, groupID string, assetIDs []string) error
	// MoveItem 将条目迁移到另一分组并赋予新的排序值。
	MoveItem(ctx context.Context, itemID, targetGroupID string, sortOrder int) error
	MaxItemSortOrder(ctx context.Context, groupID string) (int, error)
}
