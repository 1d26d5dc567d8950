package entity

type Summary struct {
	TotalTeams     int `json:"total_teams"`
	TotalTodos     int `json:"total_todos"`
	CompletedTodos int `json:"completed_todos"`
	PendingTodos   int `json:"pending_todos"`
}
