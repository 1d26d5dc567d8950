package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// canTouchTodo повторяет серверные правила доступа: админ может все,
// иначе требуется членство в команде и статус создателя либо явного
// редактора; вызывается под блокировкой
func (s *Server) canTouchTodo(p *entity.User, todo *entity.Todo) bool {
	if p.IsAdmin() {
		return true
	}
	team := s.findTeam(todo.TeamID)
	if !team.HasMember(p.ID) {
		return false
	}
	return todo.CreatorID == p.ID || todo.HasEditor(p.ID)
}

// handleListTodos обрабатывает GET /todos с фильтрами team, completed, title
func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	teamFilter := r.URL.Query().Get("team")
	titleFilter := strings.ToLower(r.URL.Query().Get("title"))
	var completedFilter *bool
	if raw := r.URL.Query().Get("completed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION", "completed must be a boolean")
			return
		}
		completedFilter = &value
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]todoJSON, 0)
	for _, todo := range s.todos {
		// Видимость: членство в команде либо админ
		if !p.IsAdmin() && !s.findTeam(todo.TeamID).HasMember(p.ID) {
			continue
		}
		if teamFilter != "" && todo.TeamID != teamFilter {
			continue
		}
		if completedFilter != nil && todo.Completed != *completedFilter {
			continue
		}
		if titleFilter != "" && !strings.Contains(strings.ToLower(todo.Title), titleFilter) {
			continue
		}
		out = append(out, todoToJSON(todo))
	}

	respondJSON(w, http.StatusOK, out)
}

// handleCreateTodo обрабатывает POST /todos
func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TeamID      string `json:"team_id"`
		Completed   bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION", "title and description are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextMutation(w) {
		return
	}

	team := s.findTeam(req.TeamID)
	if team == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "team not found")
		return
	}
	if !p.IsAdmin() && !team.HasMember(p.ID) {
		respondError(w, http.StatusBadRequest, "VALIDATION", "principal is not a member of the team")
		return
	}

	todo := &entity.Todo{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Completed:      req.Completed,
		TeamID:         req.TeamID,
		CreatorID:      p.ID,
		AllowedEditors: []string{},
		CreatedAt:      s.now(),
	}
	s.todos = append(s.todos, todo)
	s.appendLog(p.ID, "todo.create", "todo", todo.ID, "todo "+todo.Title+" created")

	respondJSON(w, http.StatusCreated, todoToJSON(todo))
}

// handleUpdateTodo обрабатывает PUT /todos/:id
func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	if s.Hooks.BeforeTodoUpdate != nil {
		s.Hooks.BeforeTodoUpdate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextMutation(w) {
		return
	}

	todo := s.findTodo(chi.URLParam(r, "id"))
	if todo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "todo not found")
		return
	}
	if !s.canTouchTodo(p, todo) {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "no edit capability")
		return
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	s.appendLog(p.ID, "todo.update", "todo", todo.ID, "todo "+todo.Title+" updated")

	respondJSON(w, http.StatusOK, todoToJSON(todo))
}

// handleDeleteTodo обрабатывает DELETE /todos/:id
func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextMutation(w) {
		return
	}

	id := chi.URLParam(r, "id")
	todo := s.findTodo(id)
	if todo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "todo not found")
		return
	}
	if !s.canTouchTodo(p, todo) {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "no delete capability")
		return
	}

	for i, existing := range s.todos {
		if existing.ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			break
		}
	}
	s.appendLog(p.ID, "todo.delete", "todo", id, "todo "+todo.Title+" deleted")

	w.WriteHeader(http.StatusNoContent)
}

// handleShareTodo обрабатывает POST /todos/:id/share; список редакторов
// заменяется целиком, не-участники команды отбрасываются молча
func (s *Server) handleShareTodo(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextMutation(w) {
		return
	}

	todo := s.findTodo(chi.URLParam(r, "id"))
	if todo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "todo not found")
		return
	}
	if !s.canTouchTodo(p, todo) {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "no share capability")
		return
	}

	team := s.findTeam(todo.TeamID)
	editors := make([]string, 0, len(req.UserIDs))
	seen := make(map[string]bool, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		if seen[userID] || !team.HasMember(userID) {
			continue
		}
		seen[userID] = true
		editors = append(editors, userID)
	}
	todo.AllowedEditors = editors
	s.appendLog(p.ID, "todo.share", "todo", todo.ID, "todo "+todo.Title+" shared")

	respondJSON(w, http.StatusOK, todoToJSON(todo))
}

// failNextMutation реализует одноразовый отказ; вызывается под блокировкой
func (s *Server) failNextMutation(w http.ResponseWriter) bool {
	if !s.FailNextTodoMutation {
		return false
	}
	s.FailNextTodoMutation = false
	respondError(w, http.StatusInternalServerError, "INTERNAL", "injected failure")
	return true
}
