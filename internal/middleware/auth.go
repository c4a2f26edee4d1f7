// Package middleware holds the gin middleware shared by every API route.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/auth"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"

	// TokenCookie is the cookie login sets and Auth falls back to.
	TokenCookie = "token"
)

// UserChecker reports whether the user a token names still exists.
type UserChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Auth authenticates the request from a bearer token or the token cookie and
// stores the caller's user id on the context. Requests without a valid,
// unrevoked token for an existing user are rejected with 401.
func Auth(tokens *auth.TokenManager, revocations auth.Revocations, users UserChecker, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			abort(c, log, apperr.Unauthorized("Unauthorized"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			abort(c, log, err)
			return
		}

		ctx := c.Request.Context()
		revoked, err := revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			abort(c, log, err)
			return
		}
		if revoked {
			abort(c, log, apperr.Unauthorized("Token revoked"))
			return
		}

		exists, err := users.Exists(ctx, claims.UserID)
		if err != nil {
			abort(c, log, err)
			return
		}
		if !exists {
			abort(c, log, apperr.Unauthorized("User no longer exists"))
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func abort(c *gin.Context, log logrus.FieldLogger, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("authenticate request")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// UserID returns the authenticated caller, if Auth ran.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Claims returns the verified token claims, if Auth ran.
func Claims(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}

// SetUserID marks the request as authenticated by id. Tests use it to skip token handling.
func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(userIDKey, id)
}
