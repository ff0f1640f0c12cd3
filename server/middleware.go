package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"vidgate/entities"
	"vidgate/handler"
)

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// authMiddleware resolves the caller identity from a Bearer token. A request
// without a token proceeds as anonymous and the coordinator decides what
// anonymous callers may do; a present-but-invalid token is rejected outright.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		parsed := &claims{}
		token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		uploader := parsed.Username
		if uploader == "" {
			uploader = parsed.Subject
		}

		c.Set(handler.IdentityKey, entities.NewIdentity(uploader))
		c.Next()
	}
}
