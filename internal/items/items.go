package items

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
	"github.com/campuskart/campus-market-api/pkg/response"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotOwner     = errors.New("item belongs to another seller")
)

// CreateItemRequest is the listing payload.
type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image"`
}

// ListQuery filters a catalog listing. Search matches item names
// case-insensitively, Categories restricts to any of the given
// categories, SellerID restricts to one seller's listings, and
// ExcludeSellerID hides a seller's own items from their browse view.
type ListQuery struct {
	Search          string
	Categories      []string
	SellerID        string
	ExcludeSellerID string
}

// ItemView is an item with its seller's identity resolved for display.
type ItemView struct {
	types.Item
	Seller *types.UserSummary `json:"seller,omitempty"`
}

// Service owns the item catalog. Orders read prices and seller
// identity through it at creation time; the amounts they freeze are
// unaffected by later edits here.
type Service struct {
	db *Database
}

func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// CreateItem lists a new item owned by sellerID.
func (s *Service) CreateItem(sellerID string, req CreateItemRequest) (*types.Item, error) {
	item := &types.Item{
		ItemID:      uuid.New().String(),
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.db.CreateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) GetItem(itemID string) (*types.Item, error) {
	return s.db.GetItem(itemID)
}

// ListItems searches the catalog and resolves seller identity on every
// hit.
func (s *Service) ListItems(q ListQuery) ([]ItemView, error) {
	items, err := s.db.ListItems(q)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(items)
}

// DeleteItem removes a listing. Only the owning seller may delete.
func (s *Service) DeleteItem(itemID, requesterID string) error {
	item, err := s.db.GetItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if item.SellerID != requesterID {
		return ErrNotOwner
	}
	return s.db.DeleteItem(itemID)
}

// assembleViews resolves seller references for a batch of items with
// one query.
func (s *Service) assembleViews(items []types.Item) ([]ItemView, error) {
	sellerIDs := make([]string, 0, len(items))
	for _, item := range items {
		sellerIDs = append(sellerIDs, item.SellerID)
	}

	sellerMap, err := s.db.GetSellersByIDs(sellerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{Item: item}
		if seller, ok := sellerMap[item.SellerID]; ok {
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

// GinHandlers contains HTTP handlers for catalog endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateItemHandler handles POST requests to list an item for sale.
func (h *GinHandlers) CreateItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		item, err := h.service.CreateItem(c.GetString("userID"), req)
		if err != nil {
			response.InternalError(c, "Failed to create item")
			return
		}

		response.Created(c, gin.H{"success": true, "item": item})
	}
}

// ListItemsHandler handles GET requests for the catalog. Query
// parameters: ?search= matches names case-insensitively, ?categories=
// takes a comma-separated list, and ?userId= hides that seller's own
// listings so buyers do not browse their own items.
func (h *GinHandlers) ListItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := ListQuery{
			Search:          c.Query("search"),
			Categories:      splitCategories(c.Query("categories")),
			ExcludeSellerID: c.Query("userId"),
		}

		views, err := h.service.ListItems(q)
		if err != nil {
			response.InternalError(c, "Failed to search items")
			return
		}

		response.OK(c, gin.H{"success": true, "items": views})
	}
}

// OwnItemsHandler handles GET requests for the caller's own listings.
func (h *GinHandlers) OwnItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := h.service.ListItems(ListQuery{SellerID: c.GetString("userID")})
		if err != nil {
			response.InternalError(c, "Failed to fetch your items")
			return
		}

		response.OK(c, gin.H{"success": true, "items": views})
	}
}

// GetItemHandler handles GET requests for a single item.
func (h *GinHandlers) GetItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := h.service.GetItem(c.Param("id"))
		if err != nil {
			response.InternalError(c, "Failed to fetch item")
			return
		}
		if item == nil {
			response.NotFound(c, "Item not found")
			return
		}

		views, err := h.service.assembleViews([]types.Item{*item})
		if err != nil {
			response.InternalError(c, "Failed to fetch item")
			return
		}

		response.OK(c, gin.H{"success": true, "item": views[0]})
	}
}

// DeleteItemHandler handles DELETE requests for a listing.
func (h *GinHandlers) DeleteItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.service.DeleteItem(c.Param("id"), c.GetString("userID"))
		switch {
		case errors.Is(err, ErrItemNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(c, err.Error())
		case err != nil:
			response.InternalError(c, "Failed to delete item")
		default:
			response.OK(c, gin.H{"success": true})
		}
	}
}

// splitCategories parses the comma-separated ?categories= parameter,
// dropping empty segments.
func splitCategories(raw string) []string {
	if raw == "" {
		return nil
	}

	var categories []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}
