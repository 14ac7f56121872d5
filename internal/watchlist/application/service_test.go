package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	assetapp "github.com/cognikit/cognikit/internal/asset/application"
	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
	assetmysql "github.com/cognikit/cognikit/internal/asset/infrastructure/persistence/mysql"
	"github.com/cognikit/cognikit/internal/watchlist/domain"
	watchlistmysql "github.com/cognikit/cognikit/internal/watchlist/infrastructure/persistence/mysql"
	"github.com/cognikit/cognikit/pkg/apperr"
	"github.com/cognikit/cognikit/pkg/db"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&assetdomain.Asset{}, &domain.Group{}, &domain.Item{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wrapped := &db.DB{DB: gdb}
	assetService := assetapp.NewService(assetmysql.NewAssetRepository(gdb), logger)
	return NewService(watchlistmysql.NewWatchlistRepository(wrapped), assetService, logger), gdb
}

func seedAsset(t *testing.T, gdb *gorm.DB) *assetdomain.Asset {
	t.Helper()
	asset := &assetdomain.Asset{
		ID:     uuid.NewString(),
		Symbol: "600519",
		Name:   "贵州茅台",
		Type:   assetdomain.TypeStock,
		Market: assetdomain.MarketCN,
	}
	require.NoError(t, gdb.Create(asset).Error)
	return asset
}

func TestCreateGroupAppendsSortOrder(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.CreateGroup(ctx, "user-1", "first")
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)

	second, err := service.CreateGroup(ctx, "user-1", "second")
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)

	// 不同用户的排序互不影响
	other, err := service.CreateGroup(ctx, "user-2", "other")
	require.NoError(t, err)
	assert.Equal(t, 0, other.SortOrder)
}

func TestGroupOwnership(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, "user-1", "mine")
	require.NoError(t, err)

	_, err = service.RenameGroup(ctx, "user-2", group.ID, "stolen")
	assert.ErrorIs(t, err, apperr.ErrWatchlistForbidden)

	err = service.DeleteGroup(ctx, "user-2", group.ID)
	assert.ErrorIs(t, err, apperr.ErrWatchlistForbidden)

	_, err = service.ListItems(ctx, "user-2", group.ID)
	assert.ErrorIs(t, err, apperr.ErrWatchlistForbidden)

	_, err = service.RenameGroup(ctx, "user-1", uuid.NewString(), "missing")
	assert.ErrorIs(t, err, apperr.ErrWatchlistGroupNotFound)
}

func TestAddItem(t *testing.T) {
	service, gdb := newTestService(t)
	ctx := context.Background()
	asset := seedAsset(t, gdb)

	group, err := service.CreateGroup(ctx, "user-1", "g")
	require.NoError(t, err)

	item, err := service.AddItem(ctx, "user-1", group.ID, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.SortOrder)

	t.Run("duplicate is rejected", func(t *testing.T) {
		_, err := service.AddItem(ctx, "user-1", group.ID, asset.ID)
		assert.ErrorIs(t, err, apperr.ErrWatchlistDuplicate)
	})

	t.Run("unknown asset is rejected", func(t *testing.T) {
		_, err := service.AddItem(ctx, "user-1", group.ID, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrAssetNotFound)
	})

	t.Run("listing embeds asset", func(t *testing.T) {
		items, err := service.ListItems(ctx, "user-1", group.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].Asset)
		assert.Equal(t, "600519", items[0].Asset.Symbol)
	})
}

func TestMoveItemBetweenGroups(t *testing.T) {
	service, gdb := newTestService(t)
	ctx := context.Background()
	asset := seedAsset(t, gdb)

	from, err := service.CreateGroup(ctx, "user-1", "from")
	require.NoError(t, err)
	to, err := service.CreateGroup(ctx, "user-1", "to")
	require.NoError(t, err)

	item, err := service.AddItem(ctx, "user-1", from.ID, asset.ID)
	require.NoError(t, err)

	require.NoError(t, service.MoveItem(ctx, "user-1", item.ID, to.ID))

	fromItems, err := service.ListItems(ctx, "user-1", from.ID)
	require.NoError(t, err)
	assert.Empty(t, fromItems)

	toItems, err := service.ListItems(ctx, "user-1", to.ID)
	require.NoError(t, err)
	require.Len(t, toItems, 1)
	assert.Equal(t, asset.ID, toItems[0].AssetID)
}

func TestMoveItemToForeignGroupIsForbidden(t *testing.T) {
	service, gdb := newTestService(t)
	ctx := context.Background()
	asset := seedAsset(t, gdb)

	mine, err := service.CreateGroup(ctx, "user-1", "mine")
	require.NoError(t, err)
	theirs, err := service.CreateGroup(ctx, "user-2", "theirs")
	require.NoError(t, err)

	item, err := service.AddItem(ctx, "user-1", mine.ID, asset.ID)
	require.NoError(t, err)

	err = service.MoveItem(ctx, "user-1", item.ID, theirs.ID)
	assert.ErrorIs(t, err, apperr.ErrWatchlistForbidden)
}

func TestRemoveItems(t *testing.T) {
	service, gdb := newTestService(t)
	ctx := context.Background()
	asset := seedAsset(t, gdb)

	group, err := service.CreateGroup(ctx, "user-1", "g")
	require.NoError(t, err)
	item, err := service.AddItem(ctx, "user-1", group.ID, asset.ID)
	require.NoError(t, err)

	t.Run("remove by item id", func(t *testing.T) {
		require.NoError(t, service.RemoveItem(ctx, "user-1", item.ID))
		items, err := service.ListItems(ctx, "user-1", group.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("missing item", func(t *testing.T) {
		err := service.RemoveItem(ctx, "user-1", uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrWatchlistItemNotFound)
	})

	t.Run("batch remove", func(t *testing.T) {
		_, err := service.AddItem(ctx, "user-1", group.ID, asset.ID)
		require.NoError(t, err)
		require.NoError(t, service.RemoveItems(ctx, "user-1", group.ID, []string{asset.ID}))
		items, err := service.ListItems(ctx, "user-1", group.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestListAllItems(t *testing.T) {
	service, gdb := newTestService(t)
	ctx := context.Background()
	asset := seedAsset(t, gdb)
	other := &assetdomain.Asset{
		ID:     uuid.NewString(),
		Symbol: "000001",
		Name:   "平安银行",
		Type:   assetdomain.TypeStock,
		Market: assetdomain.MarketCN,
	}
	require.NoError(t, gdb.Create(other).Error)

	a, err := service.CreateGroup(ctx, "user-1", "a")
	require.NoError(t, err)
	b, err := service.CreateGroup(ctx, "user-1", "b")
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "user-1", a.ID, asset.ID)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "user-1", b.ID, other.ID)
	require.NoError(t, err)

	// 他人的条目不会混入
	foreign, err := service.CreateGroup(ctx, "user-2", "foreign")
	require.NoError(t, err)
	_, err = service.AddItem(ctx, "user-2", foreign.ID, asset.ID)
	require.NoError(t, err)

	items, err := service.ListAllItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.NotNil(t, item.Asset)
	}
}

func TestReorderGroupsService(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	a, err := service.CreateGroup(ctx, "user-1", "a")
	require.NoError(t, err)
	b, err := service.CreateGroup(ctx, "user-1", "b")
	require.NoError(t, err)

	require.NoError(t, service.ReorderGroups(ctx, "user-1", []string{b.ID, a.ID}))

	groups, err := service.ListGroups(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].Name)
	assert.Equal(t, "a", groups[1].Name)
}
