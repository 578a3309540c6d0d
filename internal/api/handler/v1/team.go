package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsantos1911/meritocracia-api/internal/api/handler/v1/response"
	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/service"
)

type TeamService interface {
	GetTeam(ctx context.Context, id uint) (domain.Team, error)
	ListTeams(ctx context.Context, month string) ([]domain.Team, error)
}

type TeamHandler struct {
	svc TeamService
}

func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{
		svc: svc,
	}
}

// HandleListTeams godoc
// @Summary      List teams with points
// @Description  Returns the roster with running totals, or with the given month's buckets
// @Tags         teams
// @Produce      json
// @Param        month  query     string  false  "month name, e.g. junho"
// @Success      200    {array}   domain.Team
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /teams [get]
func (h *TeamHandler) HandleListTeams(ctx *gin.Context) {
	teams, err := h.svc.ListTeams(ctx.Request.Context(), ctx.Query("month"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleListTeams -> h.svc.ListTeams -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if teams == nil {
		teams = []domain.Team{}
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleGetTeam godoc
// @Summary      Get a single team
// @Tags         teams
// @Produce      json
// @Param        teamID  path      int  true  "team ID"
// @Success      200     {object}  domain.Team
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /teams/{teamID} [get]
func (h *TeamHandler) HandleGetTeam(ctx *gin.Context) {
	id, err := parseID(ctx.Param("teamID"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.GetTeam(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("team", "id", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetTeam -> h.svc.GetTeam -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, team)
}
