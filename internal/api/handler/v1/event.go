package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsantos1911/meritocracia-api/internal/api/handler/v1/request"
	"github.com/vsantos1911/meritocracia-api/internal/api/handler/v1/response"
	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/service"
)

type LedgerService interface {
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context, month string) ([]domain.Event, error)
	RecordEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ReviseEvent(ctx context.Context, id uint, patch service.EventPatch) (domain.Event, error)
	RemoveEvent(ctx context.Context, id uint) (bool, error)
	ZeroMonth(ctx context.Context, month string) error
	ResetMonth(ctx context.Context, month string) error
	ForceSetMonthlyPoints(ctx context.Context, month string, data map[string]int) error
}

type EventHandler struct {
	svc     LedgerService
	teamSvc TeamService
}

func NewEventHandler(svc LedgerService, teamSvc TeamService) *EventHandler {
	return &EventHandler{
		svc:     svc,
		teamSvc: teamSvc,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Lists all events, or only those of the given month of the current year
// @Tags         events
// @Produce      json
// @Param        month  query     string  false  "month name, e.g. junho"
// @Success      200    {array}   domain.Event
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context(), ctx.Query("month"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if events == nil {
		events = []domain.Event{}
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get a single event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	id, err := parseID(ctx.Param("eventID"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "id", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Record an event
// @Description  Creates an event and credits its points to the team's running total and monthly bucket
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event := domain.Event{
		TeamID:           req.TeamID,
		Type:             req.Type,
		Description:      req.Description,
		Points:           *req.Points,
		OfficersInvolved: req.OfficersInvolved,
		CreatedBy:        req.CreatedBy,
		MonthYear:        req.MonthYear,
	}

	if req.EventDate != "" {
		eventDate, err := parseEventDate(req.EventDate)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		event.EventDate = eventDate
	}

	created, err := h.svc.RecordEvent(ctx.Request.Context(), event)
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("team", "id", req.TeamID))
			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.RecordEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateEvent godoc
// @Summary      Revise an event
// @Description  Full or partial update; the ledger is reconciled with the change
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "event ID"
// @Param        request  body      request.UpdateEventRequest  true  "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [put]
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	id, err := parseID(ctx.Param("eventID"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	patch := service.EventPatch{
		TeamID:           req.TeamID,
		Type:             req.Type,
		Description:      req.Description,
		Points:           req.Points,
		OfficersInvolved: req.OfficersInvolved,
		CreatedBy:        req.CreatedBy,
		MonthYear:        req.MonthYear,
	}

	if req.EventDate != nil {
		eventDate, dateErr := parseEventDate(*req.EventDate)
		if dateErr != nil {
			response.RenderErr(ctx, response.ErrBadRequest(dateErr))
			return
		}
		patch.EventDate = &eventDate
	}

	revised, err := h.svc.ReviseEvent(ctx.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "id", id))
			return
		}
		if errors.Is(err, service.ErrTeamNotFound) {
			var teamID uint
			if req.TeamID != nil {
				teamID = *req.TeamID
			}
			response.RenderErr(ctx, response.ErrNotFound("team", "id", teamID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.ReviseEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, revised)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Removes the event and reverses its ledger contribution
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  response.DeleteEventResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [delete]
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	id, err := parseID(ctx.Param("eventID"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	removed, err := h.svc.RemoveEvent(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.RemoveEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if !removed {
		response.RenderErr(ctx, response.ErrNotFound("event", "id", id))
		return
	}

	ctx.JSON(http.StatusOK, response.DeleteEventResponse{
		Success: true,
		Message: "Evento removido com sucesso",
	})
}

// HandleZeroPoints godoc
// @Summary      Zero a month's buckets
// @Description  Sets every team's bucket for the month to 0 without touching events
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request  body      request.MonthRequest  true  "request body"
// @Success      200      {array}   domain.Team
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /zero-points [post]
func (h *EventHandler) HandleZeroPoints(ctx *gin.Context) {
	var req request.MonthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ZeroMonth(ctx.Request.Context(), req.Month); err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleZeroPoints -> h.svc.ZeroMonth -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.renderTeamsForMonth(ctx, req.Month)
}

// HandleReset godoc
// @Summary      Reset a month
// @Description  Deletes every event of the month and zeroes every team's bucket for it
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request  body      request.MonthRequest  true  "request body"
// @Success      200      {object}  response.ResetResponse
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /reset [post]
func (h *EventHandler) HandleReset(ctx *gin.Context) {
	var req request.MonthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ResetMonth(ctx.Request.Context(), req.Month); err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleReset -> h.svc.ResetMonth -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ResetResponse{
		Success: true,
		Message: "Mês reiniciado com sucesso",
	})
}

// HandleSaveData godoc
// @Summary      Force-set a month's buckets
// @Description  Bulk-overwrites the month's buckets from a team-name to points map, bypassing the ledger
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request  body      request.SaveDataRequest  true  "request body"
// @Success      200      {array}   domain.Team
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /salvar-dados [post]
func (h *EventHandler) HandleSaveData(ctx *gin.Context) {
	var req request.SaveDataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ForceSetMonthlyPoints(ctx.Request.Context(), req.Month, req.Data); err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleSaveData -> h.svc.ForceSetMonthlyPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.renderTeamsForMonth(ctx, req.Month)
}

func (h *EventHandler) renderTeamsForMonth(ctx *gin.Context, month string) {
	teams, err := h.teamSvc.ListTeams(ctx.Request.Context(), month)
	if err != nil {
		err = fmt.Errorf("v1.renderTeamsForMonth -> h.teamSvc.ListTeams -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", raw)
	}

	return uint(id), nil
}

// parseEventDate accepts full ISO-8601 timestamps and bare dates.
func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}

	return t, nil
}
