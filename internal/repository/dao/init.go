package dao

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Team{},
		&Event{},
		&TeamMonthlyPoints{},
	)
}

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminFullName = "Administrador"
)

var seedTeams = []Team{
	{Name: "ALFA", ColorCode: "#e74c3c"},
	{Name: "BRAVO", ColorCode: "#3498db"},
	{Name: "CHARLIE", ColorCode: "#2ecc71"},
	{Name: "DELTA", ColorCode: "#f1c40f"},
}

// Seed creates the fixed team roster and the admin account. It is
// idempotent, and re-syncs the admin password to the default when the
// stored value differs (availability over security, kept on purpose).
func Seed(ctx context.Context, db *gorm.DB) error {
	teamDAO := NewTeamDAO(db)
	userDAO := NewUserDAO(db)

	for _, team := range seedTeams {
		_, err := teamDAO.FindByNameFold(ctx, team.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrTeamNotFound) {
			return err
		}

		if _, err = teamDAO.Insert(ctx, team); err != nil && !errors.Is(err, ErrTeamNameExists) {
			return err
		}
	}

	admin, err := userDAO.FindByUsername(ctx, defaultAdminUsername)
	if errors.Is(err, ErrUserNotFound) {
		_, err = userDAO.Insert(ctx, User{
			Username: defaultAdminUsername,
			Password: defaultAdminPassword,
			FullName: defaultAdminFullName,
			IsAdmin:  true,
		})
		if err != nil && !errors.Is(err, ErrUsernameExists) {
			return err
		}

		return nil
	}
	if err != nil {
		return err
	}

	if admin.Password != defaultAdminPassword {
		zap.L().Warn("admin password out of sync, restoring default",
			zap.Uint("userID", admin.ID))

		return userDAO.UpdatePassword(ctx, admin.ID, defaultAdminPassword)
	}

	return nil
}
