package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gorilla/mux"
)

type createTodoRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time `json:"due_date"`
}

type updateTodoRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

func toPriority(p *string) *models.Priority {
	if p == nil {
		return nil
	}
	v := models.Priority(*p)
	return &v
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	todo := &models.Todo{
		Title:    req.Title,
		Priority: toPriority(req.Priority),
		DueDate:  req.DueDate,
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}

	created, err := s.todos.Create(r.Context(), userFrom(r.Context()).ID, todo)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presentTodo(created))
}

func parseListParams(r *http.Request) (services.ListParams, error) {
	q := r.URL.Query()
	var p services.ListParams

	atoi := func(name string, dst *int) error {
		v := q.Get(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", common.ErrorValidation, name)
		}
		*dst = n
		return nil
	}
	if err := atoi("page", &p.Page); err != nil {
		return p, err
	}
	if err := atoi("page_size", &p.PageSize); err != nil {
		return p, err
	}

	if v := q.Get("priority"); v != "" {
		switch pr := models.Priority(v); pr {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
			p.Priority = &pr
		default:
			return p, fmt.Errorf("%w: priority must be one of LOW, MEDIUM, HIGH", common.ErrorValidation)
		}
	}
	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("%w: completed must be a boolean", common.ErrorValidation)
		}
		p.Completed = &b
	}
	p.Search = q.Get("search")
	return p, nil
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.todos.List(r.Context(), userFrom(r.Context()).ID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTodoPage(page))
}

func (s *Server) todoStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.todos.Stats(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentStats(stats))
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.Get(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTodo(todo))
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	var req updateTodoRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	todo, err := s.todos.Update(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"], models.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    toPriority(req.Priority),
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTodo(todo))
}

func (s *Server) completeTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.Complete(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTodo(todo))
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Delete(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"]); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type presignResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	p, err := s.attachments.PresignUpload(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presignResponse{URL: p.URL, Method: p.Method, ExpiresAt: p.ExpiresAt})
}

func (s *Server) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	p, err := s.attachments.PresignDownload(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presignResponse{URL: p.URL, Method: p.Method, ExpiresAt: p.ExpiresAt})
}
