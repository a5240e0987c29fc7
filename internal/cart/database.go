package cart

import (
	"errors"

	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// GetCart returns the user's cart with its lines, or nil if the user
// has never carted anything.
func (d *Database) GetCart(userID string) (*types.Cart, error) {
	var cart types.Cart
	if err := d.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCart returns the user's cart, creating an empty one on
// first use.
func (d *Database) GetOrCreateCart(userID string) (*types.Cart, error) {
	cart, err := d.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &types.Cart{UserID: userID}
	if err := d.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// UpsertLine adds quantity to an existing line for the item or creates
// a new one.
func (d *Database) UpsertLine(cartID uint, itemID string, quantity int) error {
	var line types.CartItem
	err := d.db.Where("cart_id = ? AND item_id = ?", cartID, itemID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.db.Create(&types.CartItem{
			CartID:   cartID,
			ItemID:   itemID,
			Quantity: quantity,
		}).Error
	}
	if err != nil {
		return err
	}

	line.Quantity += quantity
	return d.db.Save(&line).Error
}

// RemoveLine drops the line for itemID from the cart.
func (d *Database) RemoveLine(cartID uint, itemID string) error {
	return d.db.Where("cart_id = ? AND item_id = ?", cartID, itemID).Delete(&types.CartItem{}).Error
}

// ClearTx empties the user's cart inside the caller's transaction.
// Order placement runs this in the same transaction that persists the
// new orders, so the clear cannot be observed without them.
func (d *Database) ClearTx(tx *gorm.DB, userID string) error {
	var cart types.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return tx.Where("cart_id = ?", cart.ID).Delete(&types.CartItem{}).Error
}
