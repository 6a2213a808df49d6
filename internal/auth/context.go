package auth

import "github.com/gin-gonic/gin"

// ContextKeyClaims is the gin context key holding the caller's *Claims.
const ContextKeyClaims = "claims"

// SetClaims stores the verified claims on the request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextKeyClaims, claims)
}

// ClaimsFrom returns the claims stored by the auth middleware.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
