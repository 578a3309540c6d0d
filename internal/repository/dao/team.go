package dao

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamNameExists = errors.New("team already exists")
)

type Team struct {
	ID uint `gorm:"primaryKey"`

	Name      string `gorm:"unique;not null"`
	ColorCode string `gorm:"not null"`
	Points    int    `gorm:"not null;default:0"`
}

type TeamMonthlyPoints struct {
	ID uint `gorm:"primaryKey"`

	TeamID    uint   `gorm:"not null;uniqueIndex:idx_team_month"`
	MonthYear string `gorm:"not null;uniqueIndex:idx_team_month"`
	Points    int    `gorm:"not null;default:0"`
}

func (TeamMonthlyPoints) TableName() string {
	return "team_monthly_points"
}

type TeamDAO struct {
	db *gorm.DB
}

func NewTeamDAO(db *gorm.DB) *TeamDAO {
	return &TeamDAO{
		db: db,
	}
}

func (d *TeamDAO) Insert(ctx context.Context, team Team) (Team, error) {
	result := d.db.WithContext(ctx).Create(&team)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_teams_name"`) {
			return Team{}, ErrTeamNameExists
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindByID(ctx context.Context, id uint) (Team, error) {
	var team Team

	result := d.db.WithContext(ctx).First(&team, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindAll(ctx context.Context) ([]Team, error) {
	var teams []Team

	result := d.db.WithContext(ctx).Order("points DESC, name ASC").Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}

	return teams, nil
}

func (d *TeamDAO) FindByNameFold(ctx context.Context, name string) (Team, error) {
	var team Team

	result := d.db.WithContext(ctx).First(&team, "LOWER(name) = LOWER(?)", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindMonthlyPointsByMonth(ctx context.Context, monthYear string) ([]TeamMonthlyPoints, error) {
	var buckets []TeamMonthlyPoints

	result := d.db.WithContext(ctx).Where("month_year = ?", monthYear).Find(&buckets)
	if result.Error != nil {
		return nil, result.Error
	}

	return buckets, nil
}

// ZeroMonth upserts every team's bucket for the month to exactly 0.
// Events are left untouched.
func (d *TeamDAO) ZeroMonth(ctx context.Context, monthYear string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return zeroAllMonthlyPoints(tx, monthYear)
	})
}

// ForceSetMonthlyPoints overwrites buckets for the month from a
// teamID -> points map, bypassing the incremental ledger path.
func (d *TeamDAO) ForceSetMonthlyPoints(ctx context.Context, monthYear string, points map[uint]int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for teamID, value := range points {
			if err := setMonthlyPoints(tx, teamID, monthYear, value); err != nil {
				return err
			}
		}

		return nil
	})
}

func zeroAllMonthlyPoints(tx *gorm.DB, monthYear string) error {
	var teams []Team
	if err := tx.Find(&teams).Error; err != nil {
		return err
	}

	for _, team := range teams {
		if err := setMonthlyPoints(tx, team.ID, monthYear, 0); err != nil {
			return err
		}
	}

	return nil
}

func setMonthlyPoints(tx *gorm.DB, teamID uint, monthYear string, points int) error {
	bucket := TeamMonthlyPoints{
		TeamID:    teamID,
		MonthYear: monthYear,
		Points:    points,
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "month_year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"points": points}),
	}).Create(&bucket).Error
}

// addMonthlyPoints adds delta to the (team, month) bucket, creating it
// with the delta as initial value when absent.
func addMonthlyPoints(tx *gorm.DB, teamID uint, monthYear string, delta int) error {
	bucket := TeamMonthlyPoints{
		TeamID:    teamID,
		MonthYear: monthYear,
		Points:    delta,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "month_year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr("team_monthly_points.points + ?", delta),
		}),
	}).Create(&bucket).Error
}

// adjustMonthlyPointsFloored adds delta to the bucket but never lets
// the stored value go below 0.
func adjustMonthlyPointsFloored(tx *gorm.DB, teamID uint, monthYear string, delta int) error {
	initial := delta
	if initial < 0 {
		initial = 0
	}

	bucket := TeamMonthlyPoints{
		TeamID:    teamID,
		MonthYear: monthYear,
		Points:    initial,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "month_year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr("GREATEST(team_monthly_points.points + ?, 0)", delta),
		}),
	}).Create(&bucket).Error
}

func incrementTeamPoints(tx *gorm.DB, teamID uint, delta int) error {
	return tx.Model(&Team{}).
		Where("id = ?", teamID).
		Update("points", gorm.Expr("points + ?", delta)).Error
}
