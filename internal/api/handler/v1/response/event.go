package response

import "time"

type DeleteEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
