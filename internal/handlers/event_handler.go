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

// EventHandler receives domain events from the content services (forum,
// article, tutorial) and hands them to the notification engine. The
// authenticated caller is trusted to report the acting profile truthfully;
// these routes are for service-to-service traffic, not browsers.
type EventHandler struct {
	engine *notifications.Engine
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(engine *notifications.Engine) *EventHandler {
	return &EventHandler{engine: engine}
}

// RegisterEventRoutes registers the domain event routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("/events/content-created", h.ContentCreated)
	g.POST("/events/content-published", h.ContentPublished)
	g.POST("/events/content-read", h.ContentRead)
	g.POST("/events/answer-unread", h.AnswerUnread)
}

// ContentPayload is the wire form of a content item inside an event.
type ContentPayload struct {
	Kind     string `json:"kind" validate:"required"`
	ID       uint   `json:"id" validate:"required"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

func (p ContentPayload) toContent() notifications.Content {
	return notifications.Content{
		Kind:     models.EntityKind(p.Kind),
		ID:       p.ID,
		Title:    p.Title,
		URL:      p.URL,
		Position: p.Position,
	}
}

// ContentCreatedRequest reports a newly created content item.
type ContentCreatedRequest struct {
	Content ContentPayload   `json:"content" validate:"required"`
	Parent  models.TargetRef `json:"parent" validate:"required"`
	TagIDs  []uint           `json:"tag_ids"`
	ActorID uint             `json:"actor_id" validate:"required"`
}

// ContentPublishedRequest reports a (re)published publication.
type ContentPublishedRequest struct {
	Content ContentPayload `json:"content" validate:"required"`
	ActorID uint           `json:"actor_id" validate:"required"`
}

// ContentReadRequest reports a profile reading a container.
type ContentReadRequest struct {
	Target   models.TargetRef `json:"target" validate:"required"`
	ReaderID uint             `json:"reader_id" validate:"required"`
}

// AnswerUnreadRequest reports a profile marking one answer unread again.
type AnswerUnreadRequest struct {
	Answer   ContentPayload   `json:"answer" validate:"required"`
	Parent   models.TargetRef `json:"parent" validate:"required"`
	AuthorID uint             `json:"author_id"`
	ReaderID uint             `json:"reader_id" validate:"required"`
}

// ContentCreated fans a created content item out to its subscribers.
func (h *EventHandler) ContentCreated(c echo.Context) error {
	var req ContentCreatedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.engine.ContentCreated(c.Request().Context(), notifications.ContentCreatedEvent{
		Content: req.Content.toContent(),
		Parent:  req.Parent,
		TagIDs:  req.TagIDs,
		ActorID: req.ActorID,
	})
	return eventResponse(c, err)
}

// ContentPublished fans a republished publication out to its subscribers.
func (h *EventHandler) ContentPublished(c echo.Context) error {
	var req ContentPublishedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.engine.ContentPublished(c.Request().Context(), notifications.ContentPublishedEvent{
		Content: req.Content.toContent(),
		ActorID: req.ActorID,
	})
	return eventResponse(c, err)
}

// ContentRead marks the reader's notifications about the target as read.
func (h *EventHandler) ContentRead(c echo.Context) error {
	var req ContentReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.engine.ContentRead(c.Request().Context(), notifications.ContentReadEvent{
		Target:   req.Target,
		ReaderID: req.ReaderID,
	})
	return eventResponse(c, err)
}

// AnswerUnread resurfaces a notification for an explicitly unread answer.
func (h *EventHandler) AnswerUnread(c echo.Context) error {
	var req AnswerUnreadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.engine.AnswerMarkedUnread(c.Request().Context(), notifications.AnswerUnreadEvent{
		Answer:   req.Answer.toContent(),
		Parent:   req.Parent,
		AuthorID: req.AuthorID,
		ReaderID: req.ReaderID,
	})
	return eventResponse(c, err)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func eventResponse(c echo.Context, err error) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, echo.Map{"success": true})
	case errors.Is(err, notifications.ErrUnknownKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, notifications.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
