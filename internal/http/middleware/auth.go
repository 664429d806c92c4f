package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.RespondError(c, 401, apierr.CodeUnauthorized, apierr.Unauthorized("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			response.RespondAPIError(c, am.log, err)
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, 401, apierr.CodeUnauthorized, apierr.Unauthorized("missing or invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ctxutil.GetRequestData(c.Request.Context()).IsAdmin() {
			response.RespondError(c, 403, apierr.CodeForbidden, apierr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// StreamRoute is the SSE endpoint. It is the only route that accepts the
// token as a query parameter, since EventSource cannot set headers.
const StreamRoute = "/api/sse/stream"

func extractTokenFromAll(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if c.FullPath() == StreamRoute {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}
