package cart

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/items"
	"github.com/campuskart/campus-market-api/internal/types"
	"github.com/campuskart/campus-market-api/pkg/response"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrOwnItem      = errors.New("cannot add your own item to cart")
)

// Line is a resolved cart line: the referenced item plus the carted
// quantity. Lines whose item no longer exists never appear here.
type Line struct {
	Item     types.Item `json:"item"`
	Quantity int        `json:"quantity"`
}

// AddRequest is the add-to-cart payload.
type AddRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Service owns cart reads and mutations. Order placement consumes it
// through Snapshot and ClearTx only.
type Service struct {
	db    *Database
	items *items.Service
}

func NewService(gormDB *gorm.DB, itemService *items.Service) *Service {
	return &Service{
		db:    NewDatabase(gormDB),
		items: itemService,
	}
}

// Add puts quantity of an item into the user's cart. Sellers cannot
// cart their own items; that is what lets the order layer trust
// buyerId != sellerId without rechecking.
func (s *Service) Add(userID, itemID string, quantity int) ([]Line, error) {
	if quantity < 1 {
		quantity = 1
	}

	item, err := s.items.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.SellerID == userID {
		return nil, ErrOwnItem
	}

	cart, err := s.db.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.UpsertLine(cart.ID, itemID, quantity); err != nil {
		return nil, err
	}

	return s.Snapshot(userID)
}

// Remove drops an item's line from the user's cart.
func (s *Service) Remove(userID, itemID string) error {
	cart, err := s.db.GetCart(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.db.RemoveLine(cart.ID, itemID)
}

// Snapshot returns the user's resolvable cart lines. A line whose item
// reference no longer resolves is skipped, not errored.
func (s *Service) Snapshot(userID string) ([]Line, error) {
	cart, err := s.db.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	lines := make([]Line, 0, len(cart.Items))
	for _, ci := range cart.Items {
		item, err := s.items.GetItem(ci.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		lines = append(lines, Line{Item: *item, Quantity: ci.Quantity})
	}
	return lines, nil
}

// ClearTx empties the user's cart inside the caller's transaction.
func (s *Service) ClearTx(tx *gorm.DB, userID string) error {
	return s.db.ClearTx(tx, userID)
}

// GinHandlers contains HTTP handlers for cart endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// GetCartHandler handles GET requests for the caller's cart.
func (h *GinHandlers) GetCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := h.service.Snapshot(c.GetString("userID"))
		if err != nil {
			response.InternalError(c, "Failed to fetch cart")
			return
		}
		if lines == nil {
			lines = []Line{}
		}

		response.OK(c, gin.H{"success": true, "cart": gin.H{"items": lines}})
	}
}

// AddToCartHandler handles POST requests to add an item to the cart.
func (h *GinHandlers) AddToCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		lines, err := h.service.Add(c.GetString("userID"), req.ItemID, req.Quantity)
		switch {
		case errors.Is(err, ErrItemNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrOwnItem):
			response.BadRequest(c, err.Error())
		case err != nil:
			response.InternalError(c, "Failed to add item to cart")
		default:
			response.OK(c, gin.H{"success": true, "cart": gin.H{"items": lines}})
		}
	}
}

// RemoveFromCartHandler handles DELETE requests for a cart line.
func (h *GinHandlers) RemoveFromCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service.Remove(c.GetString("userID"), c.Param("item_id")); err != nil {
			response.InternalError(c, "Failed to remove item from cart")
			return
		}

		response.OK(c, gin.H{"success": true})
	}
}
