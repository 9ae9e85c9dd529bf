package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
	"sitterboard/internal/http/response"
)

const ContextCallerKey = "caller"

// Resolver maps a bearer credential to the request's caller.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (user.Caller, error)
}

func Authenticate(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		caller, err := resolver.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(ContextCallerKey, caller)
		logger := zerolog.Ctx(c.Request.Context()).With().Str("user_id", caller.ID.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequireRole short-circuits with forbidden before the handler runs. Services
// check roles again; this only keeps obviously wrong callers off the route.
func RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			response.Error(c, common.NewError(common.CodeUnauthorized, "unauthorized", nil))
			return
		}
		if caller.Role == "" {
			response.Error(c, common.NewError(common.CodeForbidden, "profile not found", nil))
			return
		}
		if !caller.Is(role) {
			response.Error(c, common.NewError(common.CodeForbidden, "insufficient role", nil))
			return
		}
		c.Next()
	}
}

func CallerFrom(c *gin.Context) (user.Caller, bool) {
	value, ok := c.Get(ContextCallerKey)
	if !ok {
		return user.Caller{}, false
	}
	caller, ok := value.(user.Caller)
	return caller, ok
}
