package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
)

// PrincipalHeader carries the acting principal, resolved upstream by
// whatever gateway fronts this service. The engine compares principals;
// it never sees the credential itself.
const PrincipalHeader = "X-Acting-Principal"

const principalKey = "acting_principal"

// RequirePrincipal rejects mutating requests that carry no principal.
// Reads and infra endpoints stay open.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := strings.TrimSpace(c.GetHeader(PrincipalHeader))
		if p != "" {
			c.Set(principalKey, p)
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		if p == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing " + PrincipalHeader + " header",
			})
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) market.Principal {
	return market.Principal(c.GetString(principalKey))
}
