package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"vigil/internal/api/types"
	"vigil/internal/auditlog"
	"vigil/internal/storage"
)

// Handler handles authentication-related HTTP requests
type Handler struct {
	storage *storage.Storage
	tokens  *TokenManager
	audit   *auditlog.Recorder
}

// NewHandler creates a new authentication handler
func NewHandler(st *storage.Storage, audit *auditlog.Recorder, jwtSecret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{
		storage: st,
		tokens:  NewTokenManager(jwtSecret, tokenTTL),
		audit:   audit,
	}
}

// TokenManager returns the token manager instance for use by middleware
func (h *Handler) TokenManager() *TokenManager {
	return h.tokens
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=4"`
}

// LoginResponse represents the login response payload
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents user information in responses
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Login handles POST /api/auth/login
//
// Verifies credentials against the active users table and issues a
// bearer token carrying the actor id and role.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	user, err := h.storage.FindActiveUserByUsername(req.Username)
	if err != nil {
		types.AbortWithError(c, types.AuthenticationError("Invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		types.AbortWithError(c, types.AuthenticationError("Invalid credentials"))
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to generate token", err))
		return
	}

	h.audit.Record(&user.ID, c.ClientIP(), "auth.login", user.Username)

	c.JSON(http.StatusOK, types.SuccessResponse(LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}))
}

// Me handles GET /api/auth/me
//
// Returns the authenticated actor's identity. Runs behind RequireAuth,
// so the claims are already on the context.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.storage.FindUserByID(ActorID(c))
	if err != nil {
		types.AbortWithError(c, types.NotFoundError("user"))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(UserInfo{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	}))
}
