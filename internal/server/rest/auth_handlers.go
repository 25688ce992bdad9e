package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type sessionResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

func (s *Server) expiresIn() int {
	return int(s.cookies.accessTTL / time.Second)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	sess, err := s.users.Register(r.Context(), req.Username, req.Email, []byte(req.Password))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.cookies.setAccess(w, sess.AccessToken)
	s.cookies.setRefresh(w, sess.RefreshToken)
	writeJSON(w, r, http.StatusCreated, presentUser(sess.User))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	sess, err := s.users.Login(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.cookies.setAccess(w, sess.AccessToken)
	s.cookies.setRefresh(w, sess.RefreshToken)
	writeJSON(w, r, http.StatusOK, sessionResponse{Message: "login successful", ExpiresIn: s.expiresIn()})
}

// refresh issues a new access cookie from the refresh cookie. A failed
// renewal sets no cookies.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		s.respondError(w, r, common.ErrRefreshTokenNotFound)
		return
	}

	grant, err := s.users.Refresh(r.Context(), token)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.cookies.setAccess(w, grant.AccessToken)
	writeJSON(w, r, http.StatusOK, sessionResponse{Message: "token refreshed", ExpiresIn: s.expiresIn()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}
	if err := s.users.Logout(r.Context(), user.ID, token); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.cookies.clear(w)
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) logoutAll(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	n, err := s.users.LogoutAll(r.Context(), user.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.cookies.clear(w)
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "logged out everywhere", "revoked": n})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, presentUser(userFrom(r.Context())))
}
