package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// handleListTeams обрабатывает GET /teams
func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]teamJSON, 0, len(s.teams))
	for _, team := range s.teams {
		out = append(out, s.teamToJSON(team))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleCreateTeam обрабатывает POST /teams; доступно любому
// аутентифицированному пользователю
func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION", "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team := &entity.Team{
		ID:        uuid.NewString(),
		Name:      req.Name,
		MemberIDs: []string{},
		CreatedAt: s.now(),
	}
	s.teams = append(s.teams, team)
	s.appendLog(p.ID, "team.create", "team", team.ID, "team "+team.Name+" created")

	respondJSON(w, http.StatusCreated, s.teamToJSON(team))
}

// handleAddMember обрабатывает POST /teams/:id/users; только админ
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may manage team membership")
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team := s.findTeam(chi.URLParam(r, "id"))
	if team == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "team not found")
		return
	}
	if s.findUser(req.UserID) == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	if team.HasMember(req.UserID) {
		respondError(w, http.StatusConflict, "CONFLICT", "user is already a member")
		return
	}

	team.MemberIDs = append(team.MemberIDs, req.UserID)
	s.appendLog(p.ID, "team.member_add", "team", team.ID, "member added to "+team.Name)

	respondJSON(w, http.StatusOK, s.teamToJSON(team))
}

// handleRemoveMember обрабатывает DELETE /teams/:id/users/:userId;
// только админ. Сервер авторитетен в каскадном отзыве: пользователь
// убирается из AllowedEditors всех todo команды.
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "PERMISSION_DENIED", "only admins may manage team membership")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team := s.findTeam(chi.URLParam(r, "id"))
	if team == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "team not found")
		return
	}
	userID := chi.URLParam(r, "userId")
	if !team.HasMember(userID) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user is not a member")
		return
	}

	members := team.MemberIDs[:0]
	for _, id := range team.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	team.MemberIDs = members

	// Каскадный отзыв явных прав
	for _, todo := range s.todos {
		if todo.TeamID != team.ID || !todo.HasEditor(userID) {
			continue
		}
		editors := todo.AllowedEditors[:0]
		for _, editorID := range todo.AllowedEditors {
			if editorID != userID {
				editors = append(editors, editorID)
			}
		}
		todo.AllowedEditors = editors
	}

	s.appendLog(p.ID, "team.member_remove", "team", team.ID, "member removed from "+team.Name)

	respondJSON(w, http.StatusOK, s.teamToJSON(team))
}
