package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type Todo struct {
	ID            string
	UserID        string
	Title         string
	Description   string
	Priority      *Priority
	DueDate       *time.Time
	Completed     bool
	AttachmentKey string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TodoFilter narrows a todo listing. Nil fields do not filter.
type TodoFilter struct {
	Priority  *Priority
	Completed *bool
	Search    string
	Offset    int
	Limit     int
}

// TodoUpdate carries a partial update; nil fields are left unchanged.
type TodoUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
	Completed   *bool
}

type TodoStats struct {
	Total      int64
	Completed  int64
	Pending    int64
	ByPriority map[Priority]int64
}
