package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

type errorResponse struct {
	Error         string            `json:"error"`
	Code          string            `json:"code,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlation_id"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, code string, fields map[string]string) {
	writeJSON(w, r, status, errorResponse{
		Error:         msg,
		Code:          code,
		Fields:        fields,
		CorrelationID: correlationIDFrom(r.Context()),
	})
}

// respondError maps service errors to HTTP statuses. Unknown errors become
// a 500 without details.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "access token expired", common.CodeTokenExpired, nil)
	case errors.Is(err, common.ErrMissingToken):
		writeError(w, r, http.StatusUnauthorized, "not authenticated", common.CodeMissingToken, nil)
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials", common.CodeInvalidCredential, nil)
	case common.IsRefreshFailure(err):
		writeError(w, r, http.StatusUnauthorized, "invalid or expired refresh token", common.CodeRefreshInvalid, nil)
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "incorrect username or password", common.CodeBadCredentials, nil)
	case errors.Is(err, common.ErrorInactiveUser):
		writeError(w, r, http.StatusForbidden, "inactive user", common.CodeInactiveUser, nil)
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, r, http.StatusForbidden, "not enough permissions", common.CodeForbidden, nil)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found", common.CodeNotFound, nil)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, r, http.StatusConflict, "username or email already registered", common.CodeAlreadyExists, nil)
	case errors.Is(err, common.ErrorValidation):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error(), common.CodeValidation, nil)
	case errors.Is(err, common.ErrStorageDisabled):
		writeError(w, r, http.StatusNotFound, "attachments are not enabled on this server", common.CodeAttachmentsDisabled, nil)
	default:
		s.logger.Error(r.Context(), "request failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error", common.CodeInternal, nil)
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func presentUser(u *models.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Username:  u.UserName,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
	if u.Email != "" {
		resp.Email = &u.Email
	}
	return resp
}

type todoResponse struct {
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

func presentTodo(t *models.Todo) todoResponse {
	resp := todoResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Title:         t.Title,
		DueDate:       t.DueDate,
		Completed:     t.Completed,
		HasAttachment: t.AttachmentKey != "",
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.Description != "" {
		d := t.Description
		resp.Description = &d
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		resp.Priority = &p
	}
	return resp
}

type todoPageResponse struct {
	Items      []todoResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

func presentTodoPage(p *services.TodoPage) todoPageResponse {
	items := make([]todoResponse, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, presentTodo(t))
	}
	return todoPageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

type statsResponse struct {
	Total      int64            `json:"total"`
	Completed  int64            `json:"completed"`
	Pending    int64            `json:"pending"`
	ByPriority map[string]int64 `json:"by_priority"`
}

func presentStats(st *models.TodoStats) statsResponse {
	byPriority := map[string]int64{
		string(models.PriorityLow):    0,
		string(models.PriorityMedium): 0,
		string(models.PriorityHigh):   0,
	}
	for p, n := range st.ByPriority {
		byPriority[string(p)] = n
	}
	return statsResponse{
		Total:      st.Total,
		Completed:  st.Completed,
		Pending:    st.Pending,
		ByPriority: byPriority,
	}
}
