package service

import (
	"context"
	"time"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/repository"
)

type bucketKey struct {
	teamID    uint
	monthYear string
}

// memStore is an in-memory stand-in for the persistence layer that
// applies the same ledger semantics as the SQL DAOs.
type memStore struct {
	nextEventID uint
	teams       map[uint]*domain.Team
	events      map[uint]domain.Event
	buckets     map[bucketKey]int
}

func newMemStore(teams ...domain.Team) *memStore {
	s := &memStore{
		teams:   make(map[uint]*domain.Team),
		events:  make(map[uint]domain.Event),
		buckets: make(map[bucketKey]int),
	}
	for i := range teams {
		team := teams[i]
		s.teams[team.ID] = &team
	}

	return s
}

func (s *memStore) FindByID(_ context.Context, id uint) (domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return event, nil
}

func (s *memStore) FindAll(_ context.Context) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}

	return events, nil
}

func (s *memStore) FindByMonthYear(_ context.Context, monthYear string) ([]domain.Event, error) {
	var events []domain.Event
	for _, e := range s.events {
		if e.MonthYear == monthYear {
			events = append(events, e)
		}
	}

	return events, nil
}

func (s *memStore) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	team, ok := s.teams[event.TeamID]
	if !ok {
		return domain.Event{}, repository.ErrTeamNotFound
	}

	s.nextEventID++
	event.ID = s.nextEventID
	event.CreatedAt = time.Now()
	s.events[event.ID] = event

	team.Points += event.Points
	s.buckets[bucketKey{event.TeamID, event.MonthYear}] += event.Points

	return event, nil
}

func (s *memStore) Update(_ context.Context, event domain.Event, adj domain.PointsAdjustment) (domain.Event, error) {
	if adj.TeamChanged {
		team, ok := s.teams[event.TeamID]
		if !ok {
			return domain.Event{}, repository.ErrTeamNotFound
		}

		s.teams[adj.OldTeamID].Points -= adj.OldPoints
		team.Points += adj.NewPoints
	} else if adj.PointsDiff != 0 {
		s.teams[event.TeamID].Points += adj.PointsDiff

		key := bucketKey{event.TeamID, event.MonthYear}
		if next := s.buckets[key] + adj.PointsDiff; next > 0 {
			s.buckets[key] = next
		} else {
			s.buckets[key] = 0
		}
	}

	stored := s.events[event.ID]
	event.CreatedAt = stored.CreatedAt
	s.events[event.ID] = event

	return event, nil
}

func (s *memStore) Delete(_ context.Context, event domain.Event) error {
	s.teams[event.TeamID].Points -= event.Points

	key := bucketKey{event.TeamID, event.MonthYear}
	if next := s.buckets[key] - event.Points; next > 0 {
		s.buckets[key] = next
	} else {
		s.buckets[key] = 0
	}

	delete(s.events, event.ID)

	return nil
}

func (s *memStore) ResetMonth(_ context.Context, monthYear string) error {
	for id, e := range s.events {
		if e.MonthYear == monthYear {
			delete(s.events, id)
		}
	}

	return s.ZeroMonth(context.Background(), monthYear)
}

func (s *memStore) ZeroMonth(_ context.Context, monthYear string) error {
	for id := range s.teams {
		s.buckets[bucketKey{id, monthYear}] = 0
	}

	return nil
}

func (s *memStore) ForceSetMonthlyPoints(_ context.Context, monthYear string, points map[uint]int) error {
	for teamID, value := range points {
		s.buckets[bucketKey{teamID, monthYear}] = value
	}

	return nil
}

func (s *memStore) FindAllTeams(_ context.Context) ([]domain.Team, error) {
	teams := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, *t)
	}

	return teams, nil
}

func (s *memStore) FindTeamByID(_ context.Context, id uint) (domain.Team, error) {
	team, ok := s.teams[id]
	if !ok {
		return domain.Team{}, repository.ErrTeamNotFound
	}

	return *team, nil
}

func (s *memStore) FindMonthlyPoints(_ context.Context, monthYear string) ([]domain.MonthlyPoints, error) {
	var buckets []domain.MonthlyPoints
	for key, points := range s.buckets {
		if key.monthYear == monthYear {
			buckets = append(buckets, domain.MonthlyPoints{
				TeamID:    key.teamID,
				MonthYear: key.monthYear,
				Points:    points,
			})
		}
	}

	return buckets, nil
}

// liveSum recomputes a team's points from its live events, the value
// the running total must always equal.
func (s *memStore) liveSum(teamID uint) int {
	sum := 0
	for _, e := range s.events {
		if e.TeamID == teamID {
			sum += e.Points
		}
	}

	return sum
}

// teamStoreAdapter exposes memStore under the TeamRepository interface,
// whose FindByID/FindAll names collide with the event methods.
type teamStoreAdapter struct {
	store *memStore
}

func (a teamStoreAdapter) FindByID(ctx context.Context, id uint) (domain.Team, error) {
	return a.store.FindTeamByID(ctx, id)
}

func (a teamStoreAdapter) FindAll(ctx context.Context) ([]domain.Team, error) {
	return a.store.FindAllTeams(ctx)
}

func (a teamStoreAdapter) FindMonthlyPoints(ctx context.Context, monthYear string) ([]domain.MonthlyPoints, error) {
	return a.store.FindMonthlyPoints(ctx, monthYear)
}

func (a teamStoreAdapter) ZeroMonth(ctx context.Context, monthYear string) error {
	return a.store.ZeroMonth(ctx, monthYear)
}

func (a teamStoreAdapter) ForceSetMonthlyPoints(ctx context.Context, monthYear string, points map[uint]int) error {
	return a.store.ForceSetMonthlyPoints(ctx, monthYear, points)
}
