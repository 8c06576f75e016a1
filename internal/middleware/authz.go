package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextSubject is the gin context key holding the token's "sub" claim.
const ContextSubject = "auth_subject"

type AuthzConfig struct {
	Secret string
	Issuer string
}

// AuthzMiddleware requires an HS256 bearer token signed with config.Secret
// and issued by config.Issuer.
func AuthzMiddleware(config AuthzConfig) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(config.Secret), nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header is required",
			})
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header must use a bearer token",
			})
			return
		}

		claims := jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(tokenStr, &claims, keyFunc); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": tokenErrorMessage(err),
			})
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is invalid"
	default:
		return "token validation failed"
	}
}
