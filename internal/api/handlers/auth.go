package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/config"
	"github.com/darthvader58/tansen/internal/models"
)

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:  db,
		cfg: cfg,
	}
}

type RegisterRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	DisplayName       string `json:"display_name"`
	SkillLevel        string `json:"skill_level"`
	PrimaryInstrument string `json:"primary_instrument"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"` // seconds
}

// JWT Claims
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		respondError(c, http.StatusConflict, codeConflict, "User with this email already exists")
		return
	}

	skillLevel := req.SkillLevel
	switch skillLevel {
	case "":
		skillLevel = models.SkillBeginner
	case models.SkillBeginner, models.SkillIntermediate, models.SkillAdvanced:
	default:
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "skill_level must be beginner, intermediate, or advanced")
		return
	}

	user := models.User{
		Email:             req.Email,
		DisplayName:       req.DisplayName,
		SkillLevel:        skillLevel,
		PrimaryInstrument: req.PrimaryInstrument,
		IsActive:          true,
	}

	if err := user.HashPassword(req.Password); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to hash password")
		return
	}

	if err := h.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to create user")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.accessTokenDuration().Seconds()),
	})
}

// Login authenticates a user and returns tokens
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
		return
	}

	if !user.IsActive {
		respondError(c, http.StatusForbidden, codeUnauthorized, "Account is disabled")
		return
	}

	if !user.CheckPassword(req.Password) {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.accessTokenDuration().Seconds()),
	})
}

// Refresh generates new tokens using a refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid or expired refresh token")
		return
	}

	var user models.User
	if dbErr := h.db.First(&user, claims.UserID).Error; dbErr != nil {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "User not found")
		return
	}

	if !user.IsActive {
		respondError(c, http.StatusForbidden, codeUnauthorized, "Account is disabled")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.accessTokenDuration().Seconds()),
	})
}

// Logout clears authentication cookies for web clients. Bearer tokens are
// stateless; clients drop them locally.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) accessTokenDuration() time.Duration {
	return time.Duration(h.cfg.AccessTokenMinutes) * time.Minute
}

func (h *AuthHandler) refreshTokenDuration() time.Duration {
	return time.Duration(h.cfg.RefreshTokenDays) * 24 * time.Hour
}

// issueTokens signs an access/refresh token pair for the user.
func (h *AuthHandler) issueTokens(user *models.User) (string, string, error) {
	accessToken, err := h.signToken(user, h.accessTokenDuration())
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.signToken(user, h.refreshTokenDuration())
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) signToken(user *models.User, lifetime time.Duration) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "tansen-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
