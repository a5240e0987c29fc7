package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/database"
	"github.com/campuskart/campus-market-api/internal/items"
	"github.com/campuskart/campus-market-api/internal/types"
)

func setupService(t *testing.T) (*Service, *items.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	itemSvc := items.NewService(db)
	return NewService(db, itemSvc), itemSvc, db
}

func listItem(t *testing.T, itemSvc *items.Service, sellerID string, price float64) *types.Item {
	t.Helper()
	item, err := itemSvc.CreateItem(sellerID, items.CreateItemRequest{
		Name:        "desk lamp",
		Description: "barely used",
		Category:    "furniture",
		Price:       price,
	})
	require.NoError(t, err)
	return item
}

func TestAddAndSnapshot(t *testing.T) {
	svc, itemSvc, _ := setupService(t)
	item := listItem(t, itemSvc, "seller-1", 40)

	lines, err := svc.Add("buyer-1", item.ItemID, 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, item.ItemID, lines[0].Item.ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddMergesQuantities(t *testing.T) {
	svc, itemSvc, _ := setupService(t)
	item := listItem(t, itemSvc, "seller-1", 40)

	_, err := svc.Add("buyer-1", item.ItemID, 1)
	require.NoError(t, err)
	lines, err := svc.Add("buyer-1", item.ItemID, 3)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestAddRejectsOwnItem(t *testing.T) {
	svc, itemSvc, _ := setupService(t)
	item := listItem(t, itemSvc, "seller-1", 40)

	_, err := svc.Add("seller-1", item.ItemID, 1)
	assert.ErrorIs(t, err, ErrOwnItem)
}

func TestAddRejectsUnknownItem(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Add("buyer-1", "no-such-item", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSnapshotSkipsDanglingLines(t *testing.T) {
	svc, itemSvc, db := setupService(t)
	kept := listItem(t, itemSvc, "seller-1", 40)
	removed := listItem(t, itemSvc, "seller-2", 25)

	_, err := svc.Add("buyer-1", kept.ItemID, 1)
	require.NoError(t, err)
	_, err = svc.Add("buyer-1", removed.ItemID, 1)
	require.NoError(t, err)

	// Seller delists one item; the stale cart line must be skipped,
	// not errored.
	require.NoError(t, db.Where("item_id = ?", removed.ItemID).Delete(&types.Item{}).Error)

	lines, err := svc.Snapshot("buyer-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.ItemID, lines[0].Item.ItemID)
}

func TestRemove(t *testing.T) {
	svc, itemSvc, _ := setupService(t)
	item := listItem(t, itemSvc, "seller-1", 40)

	_, err := svc.Add("buyer-1", item.ItemID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Remove("buyer-1", item.ItemID))

	lines, err := svc.Snapshot("buyer-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Removing from a nonexistent cart is a no-op.
	assert.NoError(t, svc.Remove("buyer-2", item.ItemID))
}
