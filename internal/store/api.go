// Package store содержит локальные коллекции клиента: todo, команды,
// пользователи и журнал. Каждая коллекция — зеркало авторитетного
// состояния сервера; мутации применяются оптимистично и сверяются с
// ответом сервера (commit или откат). Коллекцию пишет только ее
// владелец, остальные компоненты лишь читают снимки.
package store

import (
	"context"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// TodoAPI внешние операции над todo
type TodoAPI interface {
	ListTodos(ctx context.Context, filter entity.TodoFilter) ([]*entity.Todo, error)
	CreateTodo(ctx context.Context, input entity.CreateTodoInput) (*entity.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch entity.TodoPatch) (*entity.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	ShareTodo(ctx context.Context, id string, userIDs []string) (*entity.Todo, error)
}

// TeamAPI внешние операции над командами
type TeamAPI interface {
	ListTeams(ctx context.Context) ([]*entity.Team, error)
	CreateTeam(ctx context.Context, name string) (*entity.Team, error)
	AddMember(ctx context.Context, teamID, userID string) (*entity.Team, error)
	RemoveMember(ctx context.Context, teamID, userID string) (*entity.Team, error)
}

// UserAPI внешние операции над пользователями
type UserAPI interface {
	ListUsers(ctx context.Context) ([]*entity.User, error)
	CreateUser(ctx context.Context, input entity.CreateUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// LogAPI чтение журнала действий
type LogAPI interface {
	ListLogs(ctx context.Context, filter entity.LogFilter) ([]*entity.AuditLogEntry, error)
}

// PrincipalSource отдает текущего аутентифицированного пользователя
type PrincipalSource interface {
	Principal() *entity.User
}

// MembershipSource отдает текущий состав команды по ее id; nil —
// команда клиенту неизвестна
type MembershipSource interface {
	TeamByID(teamID string) *entity.Team
}
