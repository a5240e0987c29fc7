package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard error envelope. Success payloads carry their
// own top-level shape (for example {success, orders}) and are sent with
// OK/Created; failures always come back as {success:false, error:{...}}.
type Response struct {
	Success bool   `json:"success"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an error response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, one per domain failure class. Clients should treat
// INTERNAL_ERROR as retriable and everything else as a problem with the
// request itself.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeOTPExpired    = "OTP_EXPIRED"
	ErrCodeInvalidOTP    = "INVALID_OTP"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// OK sends a 200 with the given body as-is.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Created sends a 201 with the given body as-is.
func Created(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response with the INVALID_INPUT code
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeInvalidInput, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	fail(c, http.StatusConflict, ErrCodeConflict, message)
}

// OTPExpired sends a 400 response with the OTP_EXPIRED code
func OTPExpired(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeOTPExpired, message)
}

// InvalidOTP sends a 400 response with the INVALID_OTP code
func InvalidOTP(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeInvalidOTP, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
