package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/pkg/auth"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer access token and sets the staff id and
// claims in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "invalid authorization format"})
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			abort(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(handler.ContextStaffID, claims.StaffID)
		c.Set(handler.ContextClaims, claims)
		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated staff
// member holds one of roles.
func (m *AuthMiddleware) RequireRole(roles ...model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := handler.Claims(c)
		if err != nil {
			abort(c, apperrors.Unauthorized(err))
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		abort(c, apperrors.Forbidden("permission denied"))
	}
}

func abort(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
	c.Abort()
}
