package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/pkg/monthkey"
	"github.com/vsantos1911/meritocracia-api/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound
	ErrTeamNotFound  = repository.ErrTeamNotFound
	ErrInvalidMonth  = monthkey.ErrUnknownMonth
)

// DefaultOfficersInvolved is stored when an event is logged without
// naming the officers.
const DefaultOfficersInvolved = "Não informado"

type LedgerEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	FindByMonthYear(ctx context.Context, monthYear string) ([]domain.Event, error)
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event, adj domain.PointsAdjustment) (domain.Event, error)
	Delete(ctx context.Context, event domain.Event) error
	ResetMonth(ctx context.Context, monthYear string) error
}

type LedgerTeamRepository interface {
	FindAll(ctx context.Context) ([]domain.Team, error)
	ZeroMonth(ctx context.Context, monthYear string) error
	ForceSetMonthlyPoints(ctx context.Context, monthYear string, points map[uint]int) error
}

// EventPatch is a partial event update. Nil fields are left unchanged.
type EventPatch struct {
	TeamID           *uint
	Type             *string
	Description      *string
	Points           *int
	OfficersInvolved *string
	CreatedBy        *string
	EventDate        *time.Time
	MonthYear        *string
}

// LedgerService owns the rule that every event mutates exactly one
// team's running total and exactly one (team, month) bucket.
type LedgerService struct {
	events LedgerEventRepository
	teams  LedgerTeamRepository
}

func NewLedgerService(events LedgerEventRepository, teams LedgerTeamRepository) *LedgerService {
	return &LedgerService{
		events: events,
		teams:  teams,
	}
}

func (s *LedgerService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	return event, nil
}

// ListEvents returns all events, or only those of the named month of
// the current year when month is non-empty.
func (s *LedgerService) ListEvents(ctx context.Context, month string) ([]domain.Event, error) {
	if month == "" {
		events, err := s.events.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("s.events.FindAll -> %w", err)
		}

		return events, nil
	}

	key, err := monthkey.FromMonthName(month, time.Now().Year())
	if err != nil {
		return nil, err
	}

	events, err := s.events.FindByMonthYear(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindByMonthYear -> %w", err)
	}

	return events, nil
}

// RecordEvent creates the event and credits its points to the team's
// running total and the (team, month) bucket.
func (s *LedgerService) RecordEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.EventDate.IsZero() {
		event.EventDate = time.Now()
	}
	// monthYear always derives from the event date, never created_at.
	if event.MonthYear == "" {
		event.MonthYear = monthkey.FromDate(event.EventDate)
	}
	if event.OfficersInvolved == "" {
		event.OfficersInvolved = DefaultOfficersInvolved
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.Create -> %w", err)
	}

	return created, nil
}

// ReviseEvent applies a patch and reconciles the ledger. A change of
// points moves the diff on the running total and the monthly bucket
// (bucket floored at 0). A change of team moves the old points off the
// old team's total and the new points onto the new team's total; the
// monthly bucket stays with the team that owned the event at creation
// time. Likewise, a patch that moves eventDate into a different month
// does not re-home the original contribution: a simultaneous points
// change lands its diff in the new month's bucket while the old
// month's bucket keeps the original points (see DESIGN.md).
func (s *LedgerService) ReviseEvent(ctx context.Context, id uint, patch EventPatch) (domain.Event, error) {
	old, err := s.events.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	updated := old
	if patch.TeamID != nil {
		updated.TeamID = *patch.TeamID
	}
	if patch.Type != nil {
		updated.Type = *patch.Type
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Points != nil {
		updated.Points = *patch.Points
	}
	if patch.OfficersInvolved != nil {
		updated.OfficersInvolved = *patch.OfficersInvolved
	}
	if patch.CreatedBy != nil {
		updated.CreatedBy = *patch.CreatedBy
	}
	if patch.EventDate != nil {
		updated.EventDate = *patch.EventDate
		if patch.MonthYear == nil {
			updated.MonthYear = monthkey.FromDate(updated.EventDate)
		}
	}
	if patch.MonthYear != nil {
		updated.MonthYear = *patch.MonthYear
	}

	pointsDiff := 0
	if patch.Points != nil {
		pointsDiff = *patch.Points - old.Points
	}

	adj := domain.PointsAdjustment{
		PointsDiff:  pointsDiff,
		TeamChanged: patch.TeamID != nil && *patch.TeamID != old.TeamID,
		OldTeamID:   old.TeamID,
		OldPoints:   old.Points,
		NewPoints:   updated.Points,
	}

	revised, err := s.events.Update(ctx, updated, adj)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.Update -> %w", err)
	}

	return revised, nil
}

// RemoveEvent deletes the event and reverses its ledger contribution.
// A missing event reports (false, nil) so deletes are idempotent for
// the caller.
func (s *LedgerService) RemoveEvent(ctx context.Context, id uint) (bool, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if err = s.events.Delete(ctx, event); err != nil {
		return false, fmt.Errorf("s.events.Delete -> %w", err)
	}

	return true, nil
}

// ZeroMonth sets every team's bucket for the month to 0 without
// touching events. Until those events are removed the bucket diverges
// from the literal event sum; that is the point of this admin tool.
func (s *LedgerService) ZeroMonth(ctx context.Context, month string) error {
	key, err := monthkey.FromMonthName(month, time.Now().Year())
	if err != nil {
		return err
	}

	if err = s.teams.ZeroMonth(ctx, key); err != nil {
		return fmt.Errorf("s.teams.ZeroMonth -> %w", err)
	}

	return nil
}

// ResetMonth deletes every event of the month and zeroes every team's
// bucket for it.
func (s *LedgerService) ResetMonth(ctx context.Context, month string) error {
	key, err := monthkey.FromMonthName(month, time.Now().Year())
	if err != nil {
		return err
	}

	if err = s.events.ResetMonth(ctx, key); err != nil {
		return fmt.Errorf("s.events.ResetMonth -> %w", err)
	}

	return nil
}

// ForceSetMonthlyPoints bulk-overwrites the month's buckets from a
// team-name -> points map (names matched case-insensitively),
// bypassing the incremental ledger path. Unknown names are skipped.
func (s *LedgerService) ForceSetMonthlyPoints(ctx context.Context, month string, data map[string]int) error {
	key, err := monthkey.FromMonthName(month, time.Now().Year())
	if err != nil {
		return err
	}

	teams, err := s.teams.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("s.teams.FindAll -> %w", err)
	}

	byName := make(map[string]uint, len(teams))
	for _, team := range teams {
		byName[strings.ToLower(team.Name)] = team.ID
	}

	points := make(map[uint]int, len(data))
	for name, value := range data {
		teamID, ok := byName[strings.ToLower(name)]
		if !ok {
			continue
		}
		points[teamID] = value
	}

	if err = s.teams.ForceSetMonthlyPoints(ctx, key, points); err != nil {
		return fmt.Errorf("s.teams.ForceSetMonthlyPoints -> %w", err)
	}

	return nil
}
