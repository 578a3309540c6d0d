package domain

type Team struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ColorCode string `json:"colorCode"`
	Points    int    `json:"points"`
}

// MonthlyPoints is the denormalized per-(team, month) aggregate kept
// alongside the team's all-time running total.
type MonthlyPoints struct {
	ID        uint   `json:"id"`
	TeamID    uint   `json:"teamId"`
	MonthYear string `json:"monthYear"`
	Points    int    `json:"points"`
}
