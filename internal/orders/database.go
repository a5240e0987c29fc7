package orders

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetOrder(orderID string) (*types.Order, error) {
	var order types.Order
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// CreateOrdersAndClear persists every order and runs clear inside one
// transaction. Either all orders commit and the cart is emptied, or
// nothing is visible at all; there is no partial-commit window.
func (d *Database) CreateOrdersAndClear(orders []*types.Order, clear func(tx *gorm.DB) error) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			if err := tx.Create(order).Error; err != nil {
				return err
			}
		}
		return clear(tx)
	})
}

// StoreOTP writes a fresh digest and expiry and advances the order to
// otpGenerated, overwriting any earlier digest. The update is
// conditional on the order not being completed; the returned bool is
// false when the condition did not hold.
func (d *Database) StoreOTP(orderID, digest string, expiresAt time.Time) (bool, error) {
	res := d.db.Model(&types.Order{}).
		Where("order_id = ? AND status <> ?", orderID, types.OrderStatusCompleted).
		Updates(map[string]interface{}{
			"otp_hash":       digest,
			"otp_expires_at": expiresAt,
			"status":         types.OrderStatusOTPGenerated,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CompleteOrder flips the order to completed and retires the OTP. The
// update is keyed on the current status, so of two concurrent verify
// attempts only one can win; the loser sees false.
func (d *Database) CompleteOrder(orderID string) (bool, error) {
	res := d.db.Model(&types.Order{}).
		Where("order_id = ? AND status = ?", orderID, types.OrderStatusOTPGenerated).
		Updates(map[string]interface{}{
			"status":     types.OrderStatusCompleted,
			"otp_hash":   nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListForUser returns every order where the user is buyer or seller,
// newest first.
func (d *Database) ListForUser(userID string) ([]types.Order, error) {
	var orders []types.Order
	if err := d.db.
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// PendingForSeller returns the seller's undelivered orders, newest
// first. Completed orders never appear.
func (d *Database) PendingForSeller(sellerID string) ([]types.Order, error) {
	var orders []types.Order
	if err := d.db.
		Where("seller_id = ? AND status <> ?", sellerID, types.OrderStatusCompleted).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetItemsByIDs fetches the given items in one query, keyed by item ID.
// Missing items are simply absent from the map.
func (d *Database) GetItemsByIDs(itemIDs []string) (map[string]types.Item, error) {
	itemMap := make(map[string]types.Item)
	if len(itemIDs) == 0 {
		return itemMap, nil
	}

	var items []types.Item
	if err := d.db.Where("item_id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		itemMap[item.ItemID] = item
	}
	return itemMap, nil
}

// GetUsersByIDs fetches the given users in one query, keyed by user ID.
func (d *Database) GetUsersByIDs(userIDs []string) (map[string]types.User, error) {
	userMap := make(map[string]types.User)
	if len(userIDs) == 0 {
		return userMap, nil
	}

	var users []types.User
	if err := d.db.Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		userMap[user.UserID] = user
	}
	return userMap, nil
}
