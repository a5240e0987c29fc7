package items

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateItem(item *types.Item) error {
	return d.db.Create(item).Error
}

func (d *Database) GetItem(itemID string) (*types.Item, error) {
	var item types.Item
	if err := d.db.Where("item_id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns the catalog filtered by the query, newest first.
func (d *Database) ListItems(q ListQuery) ([]types.Item, error) {
	query := d.db.Order("created_at DESC")
	if q.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}
	if len(q.Categories) > 0 {
		query = query.Where("category IN ?", q.Categories)
	}
	if q.SellerID != "" {
		query = query.Where("seller_id = ?", q.SellerID)
	}
	if q.ExcludeSellerID != "" {
		query = query.Where("seller_id <> ?", q.ExcludeSellerID)
	}

	var items []types.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (d *Database) DeleteItem(itemID string) error {
	return d.db.Where("item_id = ?", itemID).Delete(&types.Item{}).Error
}

// GetSellersByIDs fetches the given users in one query, keyed by user
// ID, for resolving seller identity on item views.
func (d *Database) GetSellersByIDs(userIDs []string) (map[string]types.User, error) {
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
