package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalContextKey = "swapmeet.principal"

type principal struct {
	ID    string
	Name  string
	Token string
}

// AuthMiddleware resolves the bearer token into a principal. Identity is
// issued by the account subsystem; this service only verifies the
// signature and reads the claims.
type AuthMiddleware struct {
	Secret []byte
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || len(m.Secret) == 0 {
		c.Next()
		return
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.Secret, nil
	})
	if err != nil || !parsed.Valid {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		c.Next()
		return
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		c.Next()
		return
	}
	name, _ := claims["name"].(string)
	setPrincipal(c, principal{ID: sub, Name: name, Token: token})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
