package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the resolved user in the context.
func JWTAuthMiddleware(authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperr.Unauthorized("Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return apperr.Unauthorized("Invalid Authorization header format")
			}

			user, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by JWTAuthMiddleware.
func CurrentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get(userKey).(*models.User)
	if !ok || user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return user, nil
}
