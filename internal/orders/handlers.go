package orders

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/campuskart/campus-market-api/pkg/response"
)

var otpFormat = regexp.MustCompile(`^[0-9]{6}$`)

// VerifyOTPRequest carries the candidate code for verification.
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// GinHandlers contains HTTP handlers for order endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateOrdersHandler handles POST /orders/create: one order per
// resolvable line of the caller's cart.
func (h *GinHandlers) CreateOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := h.service.CreateFromCart(c.GetString("userID"))
		if err != nil {
			respondOrderError(c, err)
			return
		}

		response.Created(c, gin.H{"success": true, "orders": views})
	}
}

// ListOrdersHandler handles GET /orders: everything the caller bought
// or sold.
func (h *GinHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := h.service.ListForUser(c.GetString("userID"))
		if err != nil {
			respondOrderError(c, err)
			return
		}

		response.OK(c, gin.H{"success": true, "orders": views})
	}
}

// GenerateOTPHandler handles POST /orders/:id/generate-otp. The
// response is the only place the plaintext code ever appears.
func (h *GinHandlers) GenerateOTPHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := h.service.GenerateOTP(c.Param("id"), c.GetString("userID"))
		if err != nil {
			respondOrderError(c, err)
			return
		}

		response.OK(c, gin.H{"success": true, "otp": code})
	}
}

// VerifyOTPHandler handles POST /orders/:id/verify-otp, completing the
// order on a match.
func (h *GinHandlers) VerifyOTPHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "OTP is required")
			return
		}
		if !otpFormat.MatchString(req.OTP) {
			response.BadRequest(c, "OTP must be a 6-digit code")
			return
		}

		if err := h.service.VerifyAndComplete(c.Param("id"), req.OTP, c.GetString("userID")); err != nil {
			respondOrderError(c, err)
			return
		}

		response.OK(c, gin.H{"success": true})
	}
}

// PendingDeliveriesHandler handles GET /orders/pending-deliveries for
// sellers.
func (h *GinHandlers) PendingDeliveriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := h.service.PendingDeliveries(c.GetString("userID"))
		if err != nil {
			respondOrderError(c, err)
			return
		}

		response.OK(c, gin.H{"success": true, "orders": views})
	}
}

// CompleteDeliveryHandler handles PUT /orders/:id/complete, the
// seller-side completion with its explicit expiry check.
func (h *GinHandlers) CompleteDeliveryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "OTP is required")
			return
		}
		if !otpFormat.MatchString(req.OTP) {
			response.BadRequest(c, "OTP must be a 6-digit code")
			return
		}

		if err := h.service.CompleteDelivery(c.Param("id"), req.OTP, c.GetString("userID")); err != nil {
			respondOrderError(c, err)
			return
		}

		response.OK(c, gin.H{"success": true})
	}
}

// respondOrderError maps domain errors onto the response taxonomy.
// Anything unrecognized is a store-level failure and reports as a
// retriable server error.
func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(c, "Order not found")
	case errors.Is(err, ErrEmptyCart):
		response.BadRequest(c, "Cart is empty")
	case errors.Is(err, ErrOTPExpired):
		response.OTPExpired(c, "OTP has expired")
	case errors.Is(err, ErrInvalidOTP):
		response.InvalidOTP(c, "Invalid OTP")
	case errors.Is(err, ErrOrderCompleted):
		response.Conflict(c, "Order is already completed")
	default:
		response.InternalError(c, "An unexpected error occurred")
	}
}
