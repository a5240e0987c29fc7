package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campuskart/campus-market-api/internal/types"
	"github.com/campuskart/campus-market-api/pkg/response"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrUserNotFound       = errors.New("user not found")
)

// RegisterRequest is the signup payload. Registration is captcha-gated.
type RegisterRequest struct {
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	CaptchaID     string `json:"captchaId" binding:"required"`
	CaptchaAnswer string `json:"captchaAnswer" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the profile edit payload. Password is
// optional; when present it replaces the stored hash.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,min=8"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Success    bool       `json:"success"`
	Token      string     `json:"token"`
	Expiration time.Time  `json:"expiration"`
	User       types.User `json:"user"`
}

// Claims represents the JWT claims structure
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ChallengeVerifier checks a captcha answer. Satisfied by the captcha
// service.
type ChallengeVerifier interface {
	Verify(id, answer string) bool
}

// Service handles account registration, login and token validation.
type Service struct {
	db        *Database
	jwtSecret []byte
}

// NewService creates a new authentication service with the given JWT secret
func NewService(gormDB *gorm.DB, jwtSecret string) *Service {
	return &Service{
		db:        NewDatabase(gormDB),
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *Service) Register(req RegisterRequest) (*types.User, error) {
	existing, err := s.db.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		UserID:       uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.db.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a 24-hour JWT carrying the
// user's identity.
func (s *Service) Login(email, password string) (*TokenResponse, error) {
	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	expiration := time.Now().Add(24 * time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
		UserID: user.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Success:    true,
		Token:      tokenString,
		Expiration: expiration,
		User:       *user,
	}, nil
}

// GetProfile fetches the account for the given user ID.
func (s *Service) GetProfile(userID string) (*types.User, error) {
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile edits the caller's account. Changing the email to one
// held by another account is rejected.
func (s *Service) UpdateProfile(userID string, req UpdateProfileRequest) (*types.User, error) {
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		existing, err := s.db.GetUserByEmail(req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()

	if err := s.db.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateToken validates a JWT token and returns the claims
// Verifies token signature and expiration
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GinHandlers contains HTTP handlers for authentication endpoints
type GinHandlers struct {
	service  *Service
	captchas ChallengeVerifier
}

// NewGinHandlers creates a new set of HTTP handlers for authentication endpoints
func NewGinHandlers(service *Service, captchas ChallengeVerifier) *GinHandlers {
	return &GinHandlers{
		service:  service,
		captchas: captchas,
	}
}

// RegisterHandler handles POST requests to create user accounts.
// The captcha answer is checked before the account is created.
func (h *GinHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		if !h.captchas.Verify(req.CaptchaID, req.CaptchaAnswer) {
			response.BadRequest(c, "Invalid or expired captcha")
			return
		}

		user, err := h.service.Register(req)
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to register user")
			return
		}

		response.Created(c, gin.H{"success": true, "user": user})
	}
}

// LoginHandler handles POST requests to exchange credentials for a JWT.
func (h *GinHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		token, err := h.service.Login(req.Email, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to log in")
			return
		}

		response.OK(c, token)
	}
}

// ProfileHandler handles GET requests for the caller's own account.
func (h *GinHandlers) ProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.service.GetProfile(c.GetString("userID"))
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to fetch profile")
			return
		}

		response.OK(c, gin.H{"success": true, "user": user})
	}
}

// UpdateProfileHandler handles PUT requests to edit the caller's
// account.
func (h *GinHandlers) UpdateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		user, err := h.service.UpdateProfile(c.GetString("userID"), req)
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrEmailTaken):
			response.Conflict(c, err.Error())
		case err != nil:
			response.InternalError(c, "Failed to update profile")
		default:
			response.OK(c, gin.H{"success": true, "user": user})
		}
	}
}

// LogoutHandler handles POST requests to log out. Tokens are stateless,
// so the server only acknowledges; the client discards the token.
func (h *GinHandlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.OK(c, gin.H{"success": true, "message": "Logged out successfully"})
	}
}
