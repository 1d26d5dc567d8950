package store

import (
	"context"
	"sync"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// Стабы источников principal и составов команд

type stubPrincipal struct {
	user *entity.User
}

func (s *stubPrincipal) Principal() *entity.User { return s.user }

type stubMemberships map[string]*entity.Team

func (s stubMemberships) TeamByID(teamID string) *entity.Team { return s[teamID] }

// fakeTodoAPI — сценарный дублер внешнего сервиса: отдает заранее
// заданную запись, умеет падать и блокироваться до сигнала
type fakeTodoAPI struct {
	mu      sync.Mutex
	calls   int
	failErr error
	blockCh chan struct{}
	result  *entity.Todo
}

func (f *fakeTodoAPI) enter() error {
	f.mu.Lock()
	f.calls++
	blockCh := f.blockCh
	failErr := f.failErr
	f.mu.Unlock()

	if blockCh != nil {
		<-blockCh
	}
	return failErr
}

func (f *fakeTodoAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTodoAPI) ListTodos(ctx context.Context, filter entity.TodoFilter) ([]*entity.Todo, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	if f.result == nil {
		return []*entity.Todo{}, nil
	}
	return []*entity.Todo{f.result.Clone()}, nil
}

func (f *fakeTodoAPI) CreateTodo(ctx context.Context, input entity.CreateTodoInput) (*entity.Todo, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.result.Clone(), nil
}

func (f *fakeTodoAPI) UpdateTodo(ctx context.Context, id string, patch entity.TodoPatch) (*entity.Todo, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.result.Clone(), nil
}

func (f *fakeTodoAPI) DeleteTodo(ctx context.Context, id string) error {
	return f.enter()
}

func (f *fakeTodoAPI) ShareTodo(ctx context.Context, id string, userIDs []string) (*entity.Todo, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	out := f.result.Clone()
	out.AllowedEditors = append([]string(nil), userIDs...)
	return out, nil
}

// fakeTeamAPI аналогичный дублер для операций над командами
type fakeTeamAPI struct {
	mu      sync.Mutex
	calls   int
	failErr error
	result  *entity.Team
}

func (f *fakeTeamAPI) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failErr
}

func (f *fakeTeamAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTeamAPI) ListTeams(ctx context.Context) ([]*entity.Team, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	if f.result == nil {
		return []*entity.Team{}, nil
	}
	return []*entity.Team{f.result.Clone()}, nil
}

func (f *fakeTeamAPI) CreateTeam(ctx context.Context, name string) (*entity.Team, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.result.Clone(), nil
}

func (f *fakeTeamAPI) AddMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.result.Clone(), nil
}

func (f *fakeTeamAPI) RemoveMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.result.Clone(), nil
}

// fakeUserAPI дублер для операций над пользователями
type fakeUserAPI struct {
	mu      sync.Mutex
	calls   int
	failErr error
	result  *entity.User
}

func (f *fakeUserAPI) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failErr
}

func (f *fakeUserAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUserAPI) ListUsers(ctx context.Context) ([]*entity.User, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	if f.result == nil {
		return []*entity.User{}, nil
	}
	cp := *f.result
	return []*entity.User{&cp}, nil
}

func (f *fakeUserAPI) CreateUser(ctx context.Context, input entity.CreateUserInput) (*entity.User, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	cp := *f.result
	return &cp, nil
}

func (f *fakeUserAPI) UpdateUser(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	cp := *f.result
	return &cp, nil
}

func (f *fakeUserAPI) DeleteUser(ctx context.Context, id string) error {
	return f.enter()
}

// fakeLogAPI дублер чтения журнала
type fakeLogAPI struct {
	mu      sync.Mutex
	calls   int
	failErr error
	entries []*entity.AuditLogEntry
}

func (f *fakeLogAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLogAPI) ListLogs(ctx context.Context, filter entity.LogFilter) ([]*entity.AuditLogEntry, error) {
	f.mu.Lock()
	f.calls++
	failErr := f.failErr
	f.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}
	return f.entries, nil
}
