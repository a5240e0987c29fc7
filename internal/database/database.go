package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
)

// NewDatabase opens the sqlite database at path and migrates the full
// schema.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema to an already-open connection. Tests use
// this directly against in-memory databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Item{},
		&types.Cart{},
		&types.CartItem{},
		&types.Order{},
	)
}
