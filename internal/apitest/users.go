package apitest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// Эндпоинты /users отвечают в конверте {"data": ...}

// handleListUsers обрабатывает GET /users; только админ
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may list users")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]userJSON, 0, len(s.users))
	for _, record := range s.users {
		out = append(out, userToJSON(record.User))
	}
	respondWrapped(w, http.StatusOK, out)
}

// handleCreateUser обрабатывает POST /users; только админ, роль выбирается
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may create users")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION", "name, email and password are required")
		return
	}
	if req.Role != entity.RoleUser && req.Role != entity.RoleAdmin {
		respondError(w, http.StatusBadRequest, "VALIDATION", "unknown role")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(req.Email) != nil {
		respondError(w, http.StatusConflict, "CONFLICT", "email already registered")
		return
	}

	record := &userRecord{
		User: entity.User{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Email:     req.Email,
			Role:      req.Role,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}
	s.users = append(s.users, record)
	s.appendLog(p.ID, "user.create", "user", record.ID, "user "+req.Name+" created")

	respondWrapped(w, http.StatusCreated, userToJSON(record.User))
}

// handleUpdateUser обрабатывает PUT /users/:id; только админ
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may update users")
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Role  *string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}
	if req.Role != nil && *req.Role != entity.RoleUser && *req.Role != entity.RoleAdmin {
		respondError(w, http.StatusBadRequest, "VALIDATION", "unknown role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.findUser(chi.URLParam(r, "id"))
	if record == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	if req.Name != nil {
		record.Name = *req.Name
	}
	if req.Email != nil {
		record.Email = *req.Email
	}
	if req.Role != nil {
		record.Role = *req.Role
	}
	s.appendLog(p.ID, "user.update", "user", record.ID, "user "+record.Name+" updated")

	respondWrapped(w, http.StatusOK, userToJSON(record.User))
}

// handleDeleteUser обрабатывает DELETE /users/:id; только админ
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may delete users")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	record := s.findUser(id)
	if record == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	for i, existing := range s.users {
		if existing.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.appendLog(p.ID, "user.delete", "user", id, "user "+record.Name+" deleted")

	w.WriteHeader(http.StatusNoContent)
}

// handleListLogs обрабатывает GET /logs; только админ. Записи
// возвращаются по убыванию времени.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may read the audit log")
		return
	}

	actor := r.URL.Query().Get("actor")
	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]logJSON, 0)
	// Журнал хранится в порядке добавления; отдаем с конца
	for i := len(s.logs) - 1; i >= 0; i-- {
		entry := s.logs[i]
		if actor != "" && entry.ActorID != actor {
			continue
		}
		if !startDate.IsZero() && entry.Timestamp.Before(startDate) {
			continue
		}
		if !endDate.IsZero() && entry.Timestamp.After(endDate) {
			continue
		}
		out = append(out, logToJSON(entry))
	}

	respondJSON(w, http.StatusOK, out)
}

func parseDateRange(r *http.Request) (start, end time.Time, err error) {
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		start, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return start, end, err
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
	}
	return start, end, err
}
