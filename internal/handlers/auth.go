package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/auth"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/middleware"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

type AuthHandler struct {
	db           *gorm.DB
	users        *store.Users
	tokens       *auth.TokenManager
	revocations  auth.Revocations
	cookieSecure bool
	log          logrus.FieldLogger
}

func NewAuthHandler(db *gorm.DB, users *store.Users, tokens *auth.TokenManager, revocations auth.Revocations, cookieSecure bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		db:           db,
		users:        users,
		tokens:       tokens,
		revocations:  revocations,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required,min=2,max=32"`
		Password string `json:"password" binding:"required,min=8,max=72"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user := models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(input.Email),
		Password: hashed,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			respondError(c, h.log, apperr.Conflict(err, "Username or email already exists"))
			return
		}
		respondError(c, h.log, apperr.Internal(err, "create user"))
		return
	}

	token, err := h.issue(c, user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	var user models.User
	res := h.db.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(input.Email)).
		Limit(1).
		Find(&user)
	if res.Error != nil {
		respondError(c, h.log, apperr.Internal(res.Error, "find user by email"))
		return
	}
	// same answer for unknown email and wrong password
	if res.RowsAffected == 0 || !auth.CheckPassword(user.Password, input.Password) {
		respondError(c, h.log, apperr.Unauthorized("Invalid credentials"))
		return
	}

	token, err := h.issue(c, user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user.Public(),
	})
}

// Logout revokes the caller's token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		respondError(c, h.log, apperr.Unauthorized("Unauthorized"))
		return
	}

	if err := h.revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"bio":        user.Bio,
		"avatar":     user.Avatar,
		"has_phone":  user.Phone != "",
		"created_at": user.CreatedAt,
	})
}

// issue signs a token for user and sets it as an HTTP-only cookie.
func (h *AuthHandler) issue(c *gin.Context, user models.User) (string, error) {
	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.tokens.TTL().Seconds()), "/", "", h.cookieSecure, true)
	return token, nil
}
