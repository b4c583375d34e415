package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/platform/ctxutil"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// AttachActor copies the identity asserted by the upstream gateway into the
// request context. Requests without one pass through anonymously.
func AttachActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := gate.Actor{
			ID:   strings.TrimSpace(c.GetHeader(HeaderActorID)),
			Role: strings.TrimSpace(c.GetHeader(HeaderActorRole)),
		}
		if a.Valid() {
			c.Request = c.Request.WithContext(ctxutil.WithActor(c.Request.Context(), a))
		}
		c.Next()
	}
}

// RequireActor rejects writes that carry no acting user.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ctxutil.GetActor(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing " + HeaderActorID + " header", Code: "unauthenticated"},
			})
			return
		}
		c.Next()
	}
}
