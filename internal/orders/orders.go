// Package orders implements the order lifecycle: creation from the
// buyer's cart, OTP-gated hand-off confirmation, and the seller's
// pending-deliveries view. An order advances pending -> otpGenerated
// -> completed and is never deleted.
package orders

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/cart"
	"github.com/campuskart/campus-market-api/internal/otp"
	"github.com/campuskart/campus-market-api/internal/types"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderCompleted = errors.New("order is already completed")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrInvalidOTP     = errors.New("invalid otp")
)

// otpValidity is how long a generated code stays usable.
const otpValidity = 24 * time.Hour

// CartStore is the slice of the cart service order placement consumes:
// a read of the resolvable lines and a clear that joins the placement
// transaction.
type CartStore interface {
	Snapshot(userID string) ([]cart.Line, error)
	ClearTx(tx *gorm.DB, userID string) error
}

// Service orchestrates order state transitions. Buyers create orders
// and generate OTPs; sellers verify them to complete the hand-off.
// Role checks that fail respond as not-found so a non-party cannot
// probe for an order's existence.
type Service struct {
	db    *Database
	carts CartStore
}

func NewService(gormDB *gorm.DB, carts CartStore) *Service {
	return &Service{
		db:    NewDatabase(gormDB),
		carts: carts,
	}
}

// CreateFromCart turns every resolvable line of the buyer's cart into
// one pending order, freezing totalAmount at the item's current price
// times the line quantity. The creates and the cart clear commit in a
// single transaction. Lines whose item no longer resolves are skipped;
// a cart with no resolvable lines fails with ErrEmptyCart.
func (s *Service) CreateFromCart(buyerID string) ([]types.OrderView, error) {
	logger := log.With().Str("service", "orders").Str("buyer_id", buyerID).Logger()

	lines, err := s.carts.Snapshot(buyerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	created := make([]*types.Order, 0, len(lines))
	for _, line := range lines {
		created = append(created, &types.Order{
			OrderID:     uuid.New().String(),
			BuyerID:     buyerID,
			SellerID:    line.Item.SellerID,
			ItemID:      line.Item.ItemID,
			Quantity:    line.Quantity,
			TotalAmount: line.Item.Price * float64(line.Quantity),
			Status:      types.OrderStatusPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		})
	}

	err = s.db.CreateOrdersAndClear(created, func(tx *gorm.DB) error {
		return s.carts.ClearTx(tx, buyerID)
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to place orders")
		return nil, err
	}

	logger.Info().Int("order_count", len(created)).Msg("orders placed from cart")

	views := make([]types.OrderView, 0, len(created))
	for _, order := range created {
		views = append(views, types.NewOrderView(*order))
	}
	return views, nil
}

// GenerateOTP mints a fresh 6-digit code for the order, stores only its
// bcrypt digest with a 24-hour expiry, and advances the order to
// otpGenerated. The plaintext is returned to the buyer exactly once
// for out-of-band sharing with the seller; it is never persisted.
// Calling again replaces the digest, which invalidates the previous
// code and restarts the window. Only the buyer may generate.
func (s *Service) GenerateOTP(orderID, requesterID string) (string, error) {
	logger := log.With().Str("service", "orders").Str("order_id", orderID).Logger()

	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return "", err
	}
	if order == nil || order.BuyerID != requesterID {
		return "", ErrOrderNotFound
	}
	if order.Completed() {
		return "", ErrOrderCompleted
	}

	plain, err := otp.Generate()
	if err != nil {
		return "", err
	}
	digest, err := otp.Hash(plain)
	if err != nil {
		return "", err
	}

	ok, err := s.db.StoreOTP(orderID, digest, time.Now().Add(otpValidity))
	if err != nil {
		return "", err
	}
	if !ok {
		// Completed between the read and the conditional write.
		return "", ErrOrderCompleted
	}

	logger.Info().Msg("otp generated")
	return plain, nil
}

// VerifyAndComplete checks the candidate code against the stored
// digest and, on a match, completes the order. Only the seller may
// verify. Each failure is distinct: unknown order or wrong role,
// already completed, expired code, or digest mismatch. A mismatch
// mutates nothing, and the conditional completion guarantees that two
// concurrent verifies cannot both succeed.
func (s *Service) VerifyAndComplete(orderID, candidate, requesterID string) error {
	logger := log.With().Str("service", "orders").Str("order_id", orderID).Logger()

	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.SellerID != requesterID {
		return ErrOrderNotFound
	}
	if order.Completed() {
		return ErrOrderCompleted
	}
	if order.OTPHash == nil {
		logger.Warn().Msg("verification attempted with no otp outstanding")
		return ErrInvalidOTP
	}
	if order.OTPExpiresAt != nil && time.Now().After(*order.OTPExpiresAt) {
		logger.Warn().Time("expired_at", *order.OTPExpiresAt).Msg("verification attempted with expired otp")
		return ErrOTPExpired
	}
	if !otp.Verify(candidate, *order.OTPHash) {
		logger.Warn().Msg("otp mismatch")
		return ErrInvalidOTP
	}

	ok, err := s.db.CompleteOrder(orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderCompleted
	}

	logger.Info().Msg("order completed")
	return nil
}

// CompleteDelivery is the seller-side completion endpoint's operation.
// It behaves like VerifyAndComplete but treats an already-completed
// order the way the lookup filter would: as not found for the caller.
// The expiry check happens before the digest comparison.
func (s *Service) CompleteDelivery(orderID, candidate, sellerID string) error {
	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.SellerID != sellerID || order.Completed() {
		return ErrOrderNotFound
	}
	if order.OTPExpiresAt != nil && time.Now().After(*order.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if order.OTPHash == nil || !otp.Verify(candidate, *order.OTPHash) {
		return ErrInvalidOTP
	}

	ok, err := s.db.CompleteOrder(orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderCompleted
	}
	return nil
}

// ListForUser returns every order the user participates in, as buyer
// or seller, with item and counterparty identity resolved for display.
func (s *Service) ListForUser(userID string) ([]types.OrderView, error) {
	orders, err := s.db.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(orders)
}

// PendingDeliveries returns the seller's undelivered orders with item
// and buyer identity resolved. Read-only.
func (s *Service) PendingDeliveries(sellerID string) ([]types.OrderView, error) {
	orders, err := s.db.PendingForSeller(sellerID)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(orders)
}

// assembleViews resolves item and user references for a batch of
// orders with one query per table.
func (s *Service) assembleViews(orders []types.Order) ([]types.OrderView, error) {
	itemIDs := make([]string, 0, len(orders))
	userIDs := make([]string, 0, 2*len(orders))
	for _, order := range orders {
		itemIDs = append(itemIDs, order.ItemID)
		userIDs = append(userIDs, order.BuyerID, order.SellerID)
	}

	itemMap, err := s.db.GetItemsByIDs(itemIDs)
	if err != nil {
		return nil, err
	}
	userMap, err := s.db.GetUsersByIDs(userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]types.OrderView, 0, len(orders))
	for _, order := range orders {
		view := types.NewOrderView(order)
		if item, ok := itemMap[order.ItemID]; ok {
			view.Item = &types.ItemSummary{
				ItemID: item.ItemID,
				Name:   item.Name,
				Price:  item.Price,
				Image:  item.ImageURL,
			}
		}
		if buyer, ok := userMap[order.BuyerID]; ok {
			view.Buyer = &types.UserSummary{
				UserID:    buyer.UserID,
				FirstName: buyer.FirstName,
				LastName:  buyer.LastName,
			}
		}
		if seller, ok := userMap[order.SellerID]; ok {
			view.Seller = &types.UserSummary{
				UserID:    seller.UserID,
				FirstName: seller.FirstName,
				LastName:  seller.LastName,
			}
		}
		views = append(views, view)
	}
	return views, nil
}
