package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/pkg/monthkey"
)

type TeamRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Team, error)
	FindAll(ctx context.Context) ([]domain.Team, error)
	FindMonthlyPoints(ctx context.Context, monthYear string) ([]domain.MonthlyPoints, error)
}

type TeamService struct {
	repo TeamRepository
}

func NewTeamService(repo TeamRepository) *TeamService {
	return &TeamService{
		repo: repo,
	}
}

func (s *TeamService) GetTeam(ctx context.Context, id uint) (domain.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return team, nil
}

// ListTeams returns the roster with running totals, or, when month is
// non-empty, with each team's bucket for that month of the current
// year (0 when the bucket was never created).
func (s *TeamService) ListTeams(ctx context.Context, month string) ([]domain.Team, error) {
	teams, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	if month == "" {
		return teams, nil
	}

	key, err := monthkey.FromMonthName(month, time.Now().Year())
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.FindMonthlyPoints(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindMonthlyPoints -> %w", err)
	}

	byTeam := make(map[uint]int, len(buckets))
	for _, b := range buckets {
		byTeam[b.TeamID] = b.Points
	}

	for i := range teams {
		teams[i].Points = byTeam[teams[i].ID]
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Points > teams[j].Points
	})

	return teams, nil
}
