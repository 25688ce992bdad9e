// Package models holds the JSON shapes the CLI exchanges with the API.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Todo struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	DueDate       *time.Time `json:"due_date"`
	Completed     bool       `json:"completed"`
	HasAttachment bool       `json:"has_attachment"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TodoInput is the body of a create request.
type TodoInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TodoPatch is a partial update; nil fields are not sent.
type TodoPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

type TodoPage struct {
	Items      []Todo `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// ListOptions are sent as query parameters; zero values are omitted.
type ListOptions struct {
	Page      int
	PageSize  int
	Priority  string
	Completed *bool
	Search    string
}

type TodoStats struct {
	Total      int64            `json:"total"`
	Completed  int64            `json:"completed"`
	Pending    int64            `json:"pending"`
	ByPriority map[string]int64 `json:"by_priority"`
}

// Presigned is a short-lived object storage URL.
type Presigned struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionInfo is returned by login and refresh.
type SessionInfo struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}
