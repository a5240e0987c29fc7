package orders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRouter mounts the order routes behind a stub identity middleware
// that trusts the X-Test-User header.
func testRouter(h *GinHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/api/v1/orders")
	group.Use(func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-Test-User"))
	})
	{
		group.POST("/create", h.CreateOrdersHandler())
		group.GET("", h.ListOrdersHandler())
		group.GET("/pending-deliveries", h.PendingDeliveriesHandler())
		group.POST("/:id/generate-otp", h.GenerateOTPHandler())
		group.POST("/:id/verify-otp", h.VerifyOTPHandler())
		group.PUT("/:id/complete", h.CompleteDeliveryHandler())
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, user string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected an error envelope, got %v", body)
	return errObj["code"].(string)
}

func TestCreateOrdersEndpoint(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))

	lamp := env.listItem(t, "seller-1", "lamp", 100)
	books := env.listItem(t, "seller-1", "textbooks", 250)
	_, err := env.carts.Add("buyer-1", lamp.ItemID, 1)
	require.NoError(t, err)
	_, err = env.carts.Add("buyer-1", books.ItemID, 3)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/create", "buyer-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])

	orders, ok := body["orders"].([]interface{})
	require.True(t, ok)
	require.Len(t, orders, 2)

	first := orders[0].(map[string]interface{})
	assert.NotEmpty(t, first["_id"])
	assert.Equal(t, "pending", first["status"])
	assert.Equal(t, false, first["isCompleted"])
	assert.Nil(t, first["otpExpiresAt"])
	_, hasOTP := first["otp"]
	assert.False(t, hasOTP, "plaintext otp must never appear in order views")
}

func TestCreateOrdersEndpointEmptyCart(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/create", "buyer-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INVALID_INPUT", errorCode(t, body))
}

func TestOTPEndpointsRoundTrip(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))
	orderID := env.placeOrder(t, "buyer-1", "seller-1", 50, 1)

	// Buyer mints the code.
	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/generate-otp", "buyer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	code, ok := body["otp"].(string)
	require.True(t, ok)
	require.Len(t, code, 6)

	// Seller verifies with the wrong code first.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	rec, body = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-otp", "seller-1",
		gin.H{"otp": wrong})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OTP", errorCode(t, body))

	// Then with the right one.
	rec, body = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-otp", "seller-1",
		gin.H{"otp": code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	// Replay is a conflict.
	rec, body = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-otp", "seller-1",
		gin.H{"otp": code})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, body))
}

func TestGenerateOTPEndpointNotFound(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))
	orderID := env.placeOrder(t, "buyer-1", "seller-1", 50, 1)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/no-such-order/generate-otp", "buyer-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	// A non-party gets the same shape as a missing order.
	rec, body = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/generate-otp", "stranger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestVerifyOTPEndpointRejectsMalformedCode(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))
	orderID := env.placeOrder(t, "buyer-1", "seller-1", 50, 1)

	for _, bad := range []string{"12345", "1234567", "12a456", ""} {
		rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-otp", "seller-1",
			gin.H{"otp": bad})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "otp %q", bad)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, body), "otp %q", bad)
	}
}

func TestCompleteDeliveryEndpoint(t *testing.T) {
	env := setupEnv(t)
	router := testRouter(NewGinHandlers(env.orders))
	orderID := env.placeOrder(t, "buyer-1", "seller-1", 50, 1)

	code, err := env.orders.GenerateOTP(orderID, "buyer-1")
	require.NoError(t, err)

	env.expireOTP(t, orderID)
	rec, body := doJSON(t, router, http.MethodPut, "/api/v1/orders/"+orderID+"/complete", "seller-1",
		gin.H{"otp": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OTP_EXPIRED", errorCode(t, body))

	// A fresh code completes the delivery.
	code, err = env.orders.GenerateOTP(orderID, "buyer-1")
	require.NoError(t, err)
	rec, body = doJSON(t, router, http.MethodPut, "/api/v1/orders/"+orderID+"/complete", "seller-1",
		gin.H{"otp": code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestListAndPendingDeliveriesEndpoints(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "buyer-1", "Bea", "Buyer")
	env.seedUser(t, "seller-1", "Sam", "Seller")
	router := testRouter(NewGinHandlers(env.orders))

	orderID := env.placeOrder(t, "buyer-1", "seller-1", 50, 1)
	code, err := env.orders.GenerateOTP(orderID, "buyer-1")
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/orders/pending-deliveries", "seller-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := body["orders"].([]interface{})
	require.Len(t, pending, 1)
	view := pending[0].(map[string]interface{})
	assert.Equal(t, "otpGenerated", view["status"])
	assert.NotNil(t, view["item"])
	assert.NotNil(t, view["buyer"])
	_, hasOTP := view["otp"]
	assert.False(t, hasOTP)

	require.NoError(t, env.orders.VerifyAndComplete(orderID, code, "seller-1"))

	rec, body = doJSON(t, router, http.MethodGet, "/api/v1/orders/pending-deliveries", "seller-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["orders"], "completed orders leave the pending view")

	rec, body = doJSON(t, router, http.MethodGet, "/api/v1/orders", "buyer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := body["orders"].([]interface{})
	require.Len(t, listed, 1)
	completed := listed[0].(map[string]interface{})
	assert.Equal(t, "completed", completed["status"])
	assert.Equal(t, true, completed["isCompleted"])
}
