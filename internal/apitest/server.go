// Package apitest — эталонная in-memory реализация REST-контракта
// сервиса задач. Поднимается в тестах вместо внешнего сервиса и
// воспроизводит его особенности, включая неоднородные конверты
// ответов: эндпоинты /users оборачивают полезную нагрузку в
// {"data": ...}, остальные возвращают ее как есть.
package apitest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

const tokenTTL = 72 * time.Hour

// userRecord хранит пользователя вместе с хэшем пароля
type userRecord struct {
	entity.User
	PasswordHash []byte
}

// Hooks позволяют тестам вмешиваться в обработку запросов
type Hooks struct {
	// BeforeTodoUpdate вызывается внутри PUT /todos/:id до применения
	// изменений; тест может приостановить обработку
	BeforeTodoUpdate func()
}

// Server — состояние эталонного сервиса
type Server struct {
	mu    sync.Mutex
	users []*userRecord
	teams []*entity.Team
	todos []*entity.Todo
	logs  []*entity.AuditLogEntry

	secret []byte
	router *chi.Mux
	now    func() time.Time

	Hooks Hooks

	// FailNextTodoMutation заставляет следующую мутацию todo ответить 500
	FailNextTodoMutation bool
}

// NewServer создает пустой эталонный сервис
func NewServer() *Server {
	s := &Server{
		secret: []byte("apitest_secret"),
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/todos", s.handleListTodos)
		r.Post("/todos", s.handleCreateTodo)
		r.Put("/todos/{id}", s.handleUpdateTodo)
		r.Delete("/todos/{id}", s.handleDeleteTodo)
		r.Post("/todos/{id}/share", s.handleShareTodo)

		r.Get("/teams", s.handleListTeams)
		r.Post("/teams", s.handleCreateTeam)
		r.Post("/teams/{id}/users", s.handleAddMember)
		r.Delete("/teams/{id}/users/{userId}", s.handleRemoveMember)

		r.Get("/users", s.handleListUsers)
		r.Post("/users", s.handleCreateUser)
		r.Put("/users/{id}", s.handleUpdateUser)
		r.Delete("/users/{id}", s.handleDeleteUser)

		r.Get("/logs", s.handleListLogs)
	})

	s.router = r
	return s
}

// Handler возвращает HTTP-обработчик сервиса
func (s *Server) Handler() http.Handler {
	return s.router
}

// SeedUser регистрирует пользователя напрямую, минуя HTTP, и
// возвращает его id
func (s *Server) SeedUser(name, email, password, role string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record := &userRecord{
		User: entity.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      role,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}
	s.users = append(s.users, record)
	return record.ID
}

func withPrincipal(r *http.Request, u *entity.User) *http.Request {
	return r.WithContext(contextWithPrincipal(r.Context(), u))
}

// authenticate проверяет bearer-токен и кладет пользователя в контекст
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(authHeader, prefix), &claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}

		s.mu.Lock()
		record := s.findUser(claims.Subject)
		s.mu.Unlock()
		if record == nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown subject")
			return
		}

		user := record.User
		next.ServeHTTP(w, withPrincipal(r, &user))
	})
}

// issueToken подписывает HS256-токен для пользователя
func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// appendLog добавляет запись журнала; вызывается под блокировкой
func (s *Server) appendLog(actorID, action, entityType, entityID, description string) {
	s.logs = append(s.logs, &entity.AuditLogEntry{
		ID:          uuid.NewString(),
		Timestamp:   s.now(),
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	})
}

// поиск по коллекциям; вызываются под блокировкой

func (s *Server) findUser(id string) *userRecord {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) findUserByEmail(email string) *userRecord {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) findTeam(id string) *entity.Team {
	for _, t := range s.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Server) findTodo(id string) *entity.Todo {
	for _, t := range s.todos {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// respondWrapped оборачивает полезную нагрузку в {"data": ...};
// так отвечают эндпоинты /users
func respondWrapped(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]interface{}{"data": data})
}

// respondError отправляет ошибку в формате API
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
