package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zeena/utils"
)

// Context keys set by the auth middleware.
const (
	CtxCustomerID = "customerID"
	CtxProviderID = "providerID"
)

// JWTAuthMiddleware verifies the bearer token and installs the verified
// identity on the request context. Token issuance, OTP flows and device
// binding live with the auth collaborator; this only consumes its tokens.
// requiredRole is "customer", "provider", or "" to accept either.
func JWTAuthMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if requiredRole != "" && role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden for this role"})
			return
		}

		switch role {
		case "customer":
			c.Set(CtxCustomerID, subject)
		case "provider":
			c.Set(CtxProviderID, subject)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		c.Next()
	}
}

// CustomerID returns the verified customer id from the context.
func CustomerID(c *gin.Context) string {
	if v, ok := c.Get(CtxCustomerID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// ProviderID returns the verified provider id from the context.
func ProviderID(c *gin.Context) string {
	if v, ok := c.Get(CtxProviderID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
