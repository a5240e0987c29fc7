package types

import (
	"time"

	"gorm.io/gorm"
)

// Order lifecycle statuses. Transitions are monotonic:
// pending -> otpGenerated -> completed.
const (
	OrderStatusPending      = "pending"
	OrderStatusOTPGenerated = "otpGenerated"
	OrderStatusCompleted    = "completed"
)

type User struct {
	gorm.Model   `json:"-"`
	UserID       string    `gorm:"uniqueIndex" json:"_id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Item struct {
	gorm.Model  `json:"-"`
	ItemID      string    `gorm:"uniqueIndex" json:"_id"`
	SellerID    string    `gorm:"index" json:"sellerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cart holds the user's open cart. One cart per user; lines reference
// items by ID only, so a line can outlive its item.
type Cart struct {
	gorm.Model `json:"-"`
	UserID     string     `gorm:"uniqueIndex" json:"userId"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

type CartItem struct {
	gorm.Model `json:"-"`
	CartID     uint   `gorm:"index" json:"-"`
	ItemID     string `json:"itemId"`
	Quantity   int    `json:"quantity"`
}

// Order is the permanent record of one item/quantity/price commitment
// between a buyer and a seller. TotalAmount is frozen at creation time;
// later price changes on the item do not touch existing orders. The OTP
// secret is stored only as a bcrypt digest and both OTP columns stay
// null until the first generate call. Orders are never deleted.
type Order struct {
	gorm.Model   `json:"-"`
	OrderID      string     `gorm:"uniqueIndex" json:"_id"`
	BuyerID      string     `gorm:"index" json:"buyerId"`
	SellerID     string     `gorm:"index" json:"sellerId"`
	ItemID       string     `json:"itemId"`
	Quantity     int        `json:"quantity"`
	TotalAmount  float64    `json:"totalAmount"`
	Status       string     `json:"status"` // pending, otpGenerated, completed
	OTPHash      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"otpExpiresAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Completed reports whether the order reached its terminal status.
// Status is the single source of truth; there is no stored flag to
// drift out of sync with it.
func (o *Order) Completed() bool {
	return o.Status == OrderStatusCompleted
}
