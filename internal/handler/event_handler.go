package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/dto"
	"github.com/Eursukkul/group-events/internal/schema"
	"github.com/Eursukkul/group-events/internal/service"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)
	g.POST("/:id/publish", h.Publish)
	g.POST("/:id/withdraw", h.Withdraw)
	g.POST("/:id/registrations", h.Register)
	g.DELETE("/:id/registrations/:participant", h.Deregister)
	g.GET("/:id/registrations/:participant/cost", h.TotalCost)
	g.GET("/:id/invitees", h.Invitees)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := schema.Lookup(req.Type)
	if err != nil {
		return err
	}
	draft, err := schema.Fill(s, req.Values)
	if err != nil {
		return err
	}

	ev, err := h.svc.CreateEvent(c.Request().Context(), req.CreatorID, draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(ev))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	ev, err := h.svc.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(ev))
}

// ListEvents filters by exactly one of ?creator= or ?registrant=.
func (h *EventHandler) ListEvents(c echo.Context) error {
	creator, registrant := c.QueryParam("creator"), c.QueryParam("registrant")
	ctx := c.Request().Context()

	switch {
	case creator != "" && registrant == "":
		events, err := h.svc.ListByCreator(ctx, creator)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToEventResponses(events))
	case registrant != "" && creator == "":
		events, err := h.svc.ListByRegistrant(ctx, registrant)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToEventResponses(events))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one of creator or registrant is required")
	}
}

func (h *EventHandler) Publish(c echo.Context) error {
	ev, err := h.svc.Publish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(ev))
}

func (h *EventHandler) Withdraw(c echo.Context) error {
	ev, err := h.svc.Withdraw(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(ev))
}

func (h *EventHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ev, err := h.svc.Register(c.Request().Context(), c.Param("id"), req.ParticipantID, req.OptionalCosts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(ev))
}

func (h *EventHandler) Deregister(c echo.Context) error {
	ev, err := h.svc.Deregister(c.Request().Context(), c.Param("id"), c.Param("participant"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(ev))
}

func (h *EventHandler) TotalCost(c echo.Context) error {
	eventID, participantID := c.Param("id"), c.Param("participant")
	total, err := h.svc.TotalCost(c.Request().Context(), eventID, participantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.CostResponse{EventID: eventID, ParticipantID: participantID, Total: total})
}

func (h *EventHandler) Invitees(c echo.Context) error {
	eventID := c.Param("id")
	ids, err := h.svc.SuggestInvitees(c.Request().Context(), eventID)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, dto.InviteesResponse{EventID: eventID, Invitees: ids})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		if apperror.KindOf(err) != "" {
			return err
		}
		return apperror.Wrap(apperror.InvalidInput, "invalid request", err)
	}
	return nil
}
