package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/auth"
	"github.com/harentsoaR/clinic-api/internal/models"
)

const identityKey = "identity"

var (
	ErrUnauthenticated = errors.New("access token not found")
	ErrForbidden       = errors.New("role not permitted")
)

// TokenVerifier is satisfied by *auth.TokenService.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Identity, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the verified identity on the context.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			_ = c.Error(ErrUnauthenticated)
			abort(c, http.StatusUnauthorized, "Access token not found")
			return
		}

		id, err := tokens.VerifyToken(raw)
		if err != nil {
			_ = c.Error(err)
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through untouched.
func OptionalAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if id, err := tokens.VerifyToken(raw); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Access token not found")
			return
		}
		if err := authorize(id, roles); err != nil {
			_ = c.Error(err)
			abort(c, http.StatusForbidden, "You are not authorized to perform this action")
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func authorize(id auth.Identity, roles []models.Role) error {
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
