package repository

import (
	"context"
	"fmt"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/repository/dao"
)

var (
	ErrTeamNotFound   = dao.ErrTeamNotFound
	ErrTeamNameExists = dao.ErrTeamNameExists
)

type TeamDAO interface {
	Insert(ctx context.Context, team dao.Team) (dao.Team, error)
	FindByID(ctx context.Context, id uint) (dao.Team, error)
	FindAll(ctx context.Context) ([]dao.Team, error)
	FindByNameFold(ctx context.Context, name string) (dao.Team, error)
	FindMonthlyPointsByMonth(ctx context.Context, monthYear string) ([]dao.TeamMonthlyPoints, error)
	ZeroMonth(ctx context.Context, monthYear string) error
	ForceSetMonthlyPoints(ctx context.Context, monthYear string, points map[uint]int) error
}

type TeamRepository struct {
	dao TeamDAO
}

func NewTeamRepository(dao TeamDAO) *TeamRepository {
	return &TeamRepository{
		dao: dao,
	}
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (domain.Team, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TeamRepository) FindAll(ctx context.Context) ([]domain.Team, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	teams := make([]domain.Team, len(found))
	for i, t := range found {
		teams[i] = r.daoToDomain(t)
	}

	return teams, nil
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (domain.Team, error) {
	found, err := r.dao.FindByNameFold(ctx, name)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindByNameFold -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TeamRepository) FindMonthlyPoints(ctx context.Context, monthYear string) ([]domain.MonthlyPoints, error) {
	found, err := r.dao.FindMonthlyPointsByMonth(ctx, monthYear)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMonthlyPointsByMonth -> %w", err)
	}

	buckets := make([]domain.MonthlyPoints, len(found))
	for i, b := range found {
		buckets[i] = domain.MonthlyPoints{
			ID:        b.ID,
			TeamID:    b.TeamID,
			MonthYear: b.MonthYear,
			Points:    b.Points,
		}
	}

	return buckets, nil
}

func (r *TeamRepository) ZeroMonth(ctx context.Context, monthYear string) error {
	if err := r.dao.ZeroMonth(ctx, monthYear); err != nil {
		return fmt.Errorf("r.dao.ZeroMonth -> %w", err)
	}

	return nil
}

func (r *TeamRepository) ForceSetMonthlyPoints(ctx context.Context, monthYear string, points map[uint]int) error {
	if err := r.dao.ForceSetMonthlyPoints(ctx, monthYear, points); err != nil {
		return fmt.Errorf("r.dao.ForceSetMonthlyPoints -> %w", err)
	}

	return nil
}

func (r *TeamRepository) daoToDomain(t dao.Team) domain.Team {
	return domain.Team{
		ID:        t.ID,
		Name:      t.Name,
		ColorCode: t.ColorCode,
		Points:    t.Points,
	}
}
