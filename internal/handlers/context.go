package handlers

import (
	"github.com/clearforum/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getProfileIDFromContext extracts the authenticated profile's ID set by the
// JWT middleware. Returns 0 when the request is unauthenticated.
func getProfileIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("profile").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.ProfileID
}
