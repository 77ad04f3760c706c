package handlers

import (
	"errors"
	"net/http"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/notifications"
	"github.com/clearforum/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests on notification targets
type FollowHandler struct {
	subscriptionRepository repositories.SubscriptionRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(subRepo repositories.SubscriptionRepository) *FollowHandler {
	return &FollowHandler{subscriptionRepository: subRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow", h.EditFollow)
	g.POST("/follow/email", h.EditFollowEmail)
}

// EditFollow follows or unfollows a target for the authenticated profile.
// Unfollowing deactivates the subscription; following again reactivates it
// with its notification history intact.
func (h *FollowHandler) EditFollow(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target := models.TargetRef{Kind: models.EntityKind(req.TargetKind), ID: req.TargetID}
	kind, err := notifications.FollowKindFor(target.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Target kind cannot be followed")
	}

	if req.Follow {
		if _, err := h.subscriptionRepository.GetOrCreateActive(profileID, target, kind, false); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return echo.NewHTTPError(http.StatusConflict, "Concurrent follow, retry")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.subscriptionRepository.Deactivate(profileID, target); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": req.Follow}})
}

// EditFollowEmail turns email delivery on or off for a target. Turning it on
// follows the target as well; turning it off keeps the in-app subscription.
func (h *FollowHandler) EditFollowEmail(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	var req models.FollowEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target := models.TargetRef{Kind: models.EntityKind(req.TargetKind), ID: req.TargetID}
	kind, err := notifications.FollowKindFor(target.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Target kind cannot be followed")
	}

	if req.Email {
		if _, err := h.subscriptionRepository.ActivateEmail(profileID, target, kind); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return echo.NewHTTPError(http.StatusConflict, "Concurrent follow, retry")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.subscriptionRepository.DeactivateEmail(profileID, target); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"by_email": req.Email}})
}
