// Package session хранит контекст аутентификации клиента: текущего
// пользователя и bearer-токен. Жизненный цикл явный: Begin при логине,
// Clear при логауте или принудительном разлогине на 401/403.
package session

import (
	"sync"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

type Session struct {
	mu    sync.RWMutex
	token string
	user  *entity.User
}

func New() *Session {
	return &Session{}
}

// Begin инициализирует сессию после успешного логина
func (s *Session) Begin(token string, user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// Clear сбрасывает сессию; токен немедленно забывается
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Token возвращает текущий bearer-токен, пустую строку вне сессии
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Principal возвращает текущего аутентифицированного пользователя
func (s *Session) Principal() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated сообщает, есть ли активная сессия
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// TokenExpired проверяет exp-клейм токена без верификации подписи.
// Используется только как гигиена перед запросом; права и роль клиент
// берет исключительно из ответов сервера.
func (s *Session) TokenExpired() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return true
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		// Непарсящийся токен не считаем истекшим: судить о нем серверу
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(nowFunc())
}
