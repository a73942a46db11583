package controllers

import (
	"fmt"

	"wardrobeapi/wardrobe"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserMiddleware resolves the token subject to its wardrobe and stores both
// on the context as currentUser and currentWardrobe.
func UserMiddleware(registry *wardrobe.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRaw := c.Get("user")
			if userRaw == nil {
				return echo.ErrUnauthorized
			}
			user, ok := userRaw.(*jwt.Token)
			if !ok {
				return echo.ErrUnauthorized
			}
			claims, ok := user.Claims.(jwt.MapClaims)
			if !ok {
				return echo.ErrUnauthorized
			}
			userID := fmt.Sprint(claims["sub"])
			if claims["sub"] == nil || userID == "" {
				c.Logger().Warn("Error while getting the token information!")
				return echo.ErrUnauthorized
			}

			c.Set("currentUser", userID)
			c.Set("currentWardrobe", registry.For(c.Request().Context(), userID))
			return next(c)
		}
	}
}

func currentUser(c echo.Context) string {
	return c.Get("currentUser").(string)
}

func currentWardrobe(c echo.Context) *wardrobe.Store {
	return c.Get("currentWardrobe").(*wardrobe.Store)
}
