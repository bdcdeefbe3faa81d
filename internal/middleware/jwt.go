package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/response"
)

// ContextOperatorKey is the gin context key storing verified operator claims.
const ContextOperatorKey = "currentOperator"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.OperatorClaims, error)
}

// JWT requires a valid bearer token. A nil validator lets every request through.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextOperatorKey, claims)
		c.Next()
	}
}

// Operator returns the verified claims of the current request.
func Operator(c *gin.Context) (*models.OperatorClaims, bool) {
	value, exists := c.Get(ContextOperatorKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.OperatorClaims)
	return claims, ok
}
