package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID uint `gorm:"primaryKey"`

	TeamID           uint   `gorm:"not null;index"`
	Type             string `gorm:"not null"`
	Description      string `gorm:"not null"`
	Points           int    `gorm:"not null"`
	OfficersInvolved string `gorm:"not null"`
	CreatedBy        string
	EventDate        time.Time `gorm:"not null"`
	MonthYear        string    `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
}

// LedgerAdjustment carries the deltas an event revision must apply to
// the running totals and monthly buckets.
type LedgerAdjustment struct {
	PointsDiff  int
	TeamChanged bool
	OldTeamID   uint
	OldPoints   int
	NewPoints   int
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Order("event_date DESC, id DESC").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByMonthYear(ctx context.Context, monthYear string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("month_year = ?", monthYear).
		Order("event_date DESC, id DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// InsertWithLedger creates the event and, in the same transaction, adds
// its points to the team's running total and the (team, month) bucket.
func (d *EventDAO) InsertWithLedger(ctx context.Context, event Event) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team Team
		if err := tx.First(&team, event.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}

			return err
		}

		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if err := incrementTeamPoints(tx, event.TeamID, event.Points); err != nil {
			return err
		}

		return addMonthlyPoints(tx, event.TeamID, event.MonthYear, event.Points)
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// UpdateWithLedger persists the patched event and applies the computed
// adjustment in the same transaction. When the team changed, only the
// two running totals move; the monthly bucket stays with the team that
// owned the event at creation time.
func (d *EventDAO) UpdateWithLedger(ctx context.Context, event Event, adj LedgerAdjustment) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if adj.TeamChanged {
			var team Team
			if err := tx.First(&team, event.TeamID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTeamNotFound
				}

				return err
			}

			if err := incrementTeamPoints(tx, adj.OldTeamID, -adj.OldPoints); err != nil {
				return err
			}
			if err := incrementTeamPoints(tx, event.TeamID, adj.NewPoints); err != nil {
				return err
			}
		} else if adj.PointsDiff != 0 {
			if err := incrementTeamPoints(tx, event.TeamID, adj.PointsDiff); err != nil {
				return err
			}
			if err := adjustMonthlyPointsFloored(tx, event.TeamID, event.MonthYear, adj.PointsDiff); err != nil {
				return err
			}
		}

		// Explicit column list keeps created_at immutable.
		return tx.Model(&Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
			"team_id":           event.TeamID,
			"type":              event.Type,
			"description":       event.Description,
			"points":            event.Points,
			"officers_involved": event.OfficersInvolved,
			"created_by":        event.CreatedBy,
			"event_date":        event.EventDate,
			"month_year":        event.MonthYear,
		}).Error
	})
	if err != nil {
		return Event{}, err
	}

	return d.FindByID(ctx, event.ID)
}

// DeleteWithLedger removes the event and reverses its contribution to
// the running total and the monthly bucket (bucket floored at 0).
func (d *EventDAO) DeleteWithLedger(ctx context.Context, event Event) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementTeamPoints(tx, event.TeamID, -event.Points); err != nil {
			return err
		}

		err := tx.Model(&TeamMonthlyPoints{}).
			Where("team_id = ? AND month_year = ?", event.TeamID, event.MonthYear).
			Update("points", gorm.Expr("GREATEST(points - ?, 0)", event.Points)).Error
		if err != nil {
			return err
		}

		return tx.Delete(&Event{}, event.ID).Error
	})
}

// ResetMonth deletes every event of the month and zeroes every team's
// bucket for it, in one transaction.
func (d *EventDAO) ResetMonth(ctx context.Context, monthYear string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("month_year = ?", monthYear).Delete(&Event{}).Error; err != nil {
			return err
		}

		return zeroAllMonthlyPoints(tx, monthYear)
	})
}
