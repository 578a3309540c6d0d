package repository

import (
	"context"
	"fmt"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	FindByMonthYear(ctx context.Context, monthYear string) ([]dao.Event, error)
	InsertWithLedger(ctx context.Context, event dao.Event) (dao.Event, error)
	UpdateWithLedger(ctx context.Context, event dao.Event, adj dao.LedgerAdjustment) (dao.Event, error)
	DeleteWithLedger(ctx context.Context, event dao.Event) error
	ResetMonth(ctx context.Context, monthYear string) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) FindByMonthYear(ctx context.Context, monthYear string) ([]domain.Event, error) {
	found, err := r.dao.FindByMonthYear(ctx, monthYear)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByMonthYear -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.InsertWithLedger(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.InsertWithLedger -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event, adj domain.PointsAdjustment) (domain.Event, error) {
	updated, err := r.dao.UpdateWithLedger(ctx, r.domainToDao(event), dao.LedgerAdjustment{
		PointsDiff:  adj.PointsDiff,
		TeamChanged: adj.TeamChanged,
		OldTeamID:   adj.OldTeamID,
		OldPoints:   adj.OldPoints,
		NewPoints:   adj.NewPoints,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateWithLedger -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, event domain.Event) error {
	if err := r.dao.DeleteWithLedger(ctx, r.domainToDao(event)); err != nil {
		return fmt.Errorf("r.dao.DeleteWithLedger -> %w", err)
	}

	return nil
}

func (r *EventRepository) ResetMonth(ctx context.Context, monthYear string) error {
	if err := r.dao.ResetMonth(ctx, monthYear); err != nil {
		return fmt.Errorf("r.dao.ResetMonth -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:               e.ID,
		TeamID:           e.TeamID,
		Type:             e.Type,
		Description:      e.Description,
		Points:           e.Points,
		OfficersInvolved: e.OfficersInvolved,
		CreatedBy:        e.CreatedBy,
		EventDate:        e.EventDate,
		MonthYear:        e.MonthYear,
		CreatedAt:        e.CreatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:               e.ID,
		TeamID:           e.TeamID,
		Type:             e.Type,
		Description:      e.Description,
		Points:           e.Points,
		OfficersInvolved: e.OfficersInvolved,
		CreatedBy:        e.CreatedBy,
		EventDate:        e.EventDate,
		MonthYear:        e.MonthYear,
		CreatedAt:        e.CreatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, len(events))
	for i, e := range events {
		result[i] = r.daoToDomain(e)
	}

	return result
}
