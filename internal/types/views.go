package types

// ItemSummary is the slice of an item embedded in order views.
type ItemSummary struct {
	ItemID string  `json:"_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Image  string  `json:"image,omitempty"`
}

// UserSummary carries just enough identity for display.
type UserSummary struct {
	UserID    string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// OrderView is the wire representation of an order. IsCompleted is
// derived from Status at assembly time, and the resolved item/buyer/
// seller summaries are optional (list endpoints populate them, the
// create response does not). The OTP plaintext never appears here.
type OrderView struct {
	Order
	IsCompleted bool         `json:"isCompleted"`
	Item        *ItemSummary `json:"item,omitempty"`
	Buyer       *UserSummary `json:"buyer,omitempty"`
	Seller      *UserSummary `json:"seller,omitempty"`
}

// NewOrderView builds a bare view of an order with the derived
// completion flag set.
func NewOrderView(o Order) OrderView {
	return OrderView{
		Order:       o,
		IsCompleted: o.Completed(),
	}
}
