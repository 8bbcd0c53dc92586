package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/group-events/internal/dto"
	"github.com/Eursukkul/group-events/internal/models"
	"github.com/Eursukkul/group-events/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/:id", h.UpsertUser)
	g.GET("/:id/notifications", h.ListNotifications)
	g.POST("/:id/notifications/:notification/read", h.MarkRead)
}

func (h *UserHandler) UpsertUser(c echo.Context) error {
	var req dto.UpsertUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user := &models.User{
		ID:        c.Param("id"),
		Username:  req.Username,
		Sex:       models.Sex(req.Sex),
		BirthDate: req.BirthDate.UTC(),
		Favorites: make([]models.FavoriteCategory, len(req.Favorites)),
	}
	for i, cat := range req.Favorites {
		user.Favorites[i] = models.FavoriteCategory{Category: cat}
	}

	if err := h.svc.UpsertUser(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// ListNotifications returns the user's stored notifications, newest first.
// ?unread=true hides the ones already read.
func (h *UserHandler) ListNotifications(c echo.Context) error {
	unread := c.QueryParam("unread") == "true"
	out, err := h.svc.Notifications(c.Request().Context(), c.Param("id"), unread)
	if err != nil {
		return err
	}
	if out == nil {
		out = []models.Notification{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) MarkRead(c echo.Context) error {
	if err := h.svc.MarkRead(c.Request().Context(), c.Param("id"), c.Param("notification")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
