package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/notifications"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles the notification feed HTTP requests
type NotificationHandler struct {
	feed *notifications.Feed
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feed *notifications.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// RegisterNotificationRoutes registers notification feed routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListUnread)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// ListUnread returns the authenticated profile's unread notifications,
// sorted by creation date and optionally filtered by target kind.
func (h *NotificationHandler) ListUnread(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	sort := notifications.SortAsc
	if c.QueryParam("sort") == "desc" {
		sort = notifications.SortDesc
	}

	opts := notifications.ListOptions{
		Sort:       sort,
		FilterKind: models.EntityKind(c.QueryParam("filter")),
		Page:       page,
		Limit:      limit,
	}

	items, total, err := h.feed.ListUnread(profileID, opts)
	if err != nil {
		if errors.Is(err, notifications.ErrUnknownKind) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown filter kind")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": items,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	count, err := h.feed.UnreadCount(c.Request().Context(), profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one of the profile's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.feed.MarkRead(c.Request().Context(), profileID, uint(notifID)); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"read": true}})
}

// MarkAllAsRead marks all of the profile's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	profileID := getProfileIDFromContext(c)
	if profileID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not authenticated")
	}

	if err := h.feed.MarkAllRead(c.Request().Context(), profileID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"read": true}})
}
