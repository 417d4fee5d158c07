package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gita-guru/internal/domain"
	"gita-guru/internal/service"
)

const apiIdentityKey = "api_identity"

// JWTParser valida access tokens emitidos por el API.
type JWTParser interface {
	Enabled() bool
	ParseAccessToken(token string) (service.Claims, error)
}

// BearerAuth exige un access token del API y deja la identidad en el contexto.
// Los rechazos llevan WWW-Authenticate como pide RFC 6750.
func BearerAuth(parser JWTParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil || !parser.Enabled() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "token auth disabled"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="gita-guru"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := parser.ParseAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrJWTExpired) {
				msg = "token expired"
			}
			c.Header("WWW-Authenticate", `Bearer realm="gita-guru", error="invalid_token", error_description="`+msg+`"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(apiIdentityKey, claims.Identity())
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentIdentity devuelve la identidad que dejo BearerAuth.
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	val, ok := c.Get(apiIdentityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := val.(domain.Identity)
	return id, ok && id.ID != ""
}
