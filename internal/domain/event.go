package domain

import "time"

type Event struct {
	ID               uint      `json:"id"`
	TeamID           uint      `json:"teamId"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	Points           int       `json:"points"`
	OfficersInvolved string    `json:"officersInvolved"`
	CreatedBy        string    `json:"createdBy"`
	EventDate        time.Time `json:"eventDate"`
	MonthYear        string    `json:"monthYear"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PointsAdjustment carries the ledger deltas computed for an event
// revision so the storage layer can apply them in one transaction.
type PointsAdjustment struct {
	PointsDiff  int
	TeamChanged bool
	OldTeamID   uint
	OldPoints   int
	NewPoints   int
}
