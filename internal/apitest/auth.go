package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// handleLogin обрабатывает POST /auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	s.mu.Lock()
	record := s.findUserByEmail(req.Email)
	s.mu.Unlock()

	if record == nil || bcrypt.CompareHashAndPassword(record.PasswordHash, []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	token, err := s.issueToken(record.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userToJSON(record.User),
	})
}

// handleRegister обрабатывает POST /auth/register; роль всегда user
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION", "name, email and password are required")
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
			Role:      entity.RoleUser,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}
	s.users = append(s.users, record)
	s.appendLog(record.ID, "user.register", "user", record.ID, "user "+req.Name+" registered")

	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": userToJSON(record.User)})
}
