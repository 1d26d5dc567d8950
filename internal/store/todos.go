package store

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/teamtodo/teamtodo-client/internal/access"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

// TodoStore владеет локальной коллекцией todo. Порядок записей — порядок
// сервера: новые добавляются в конец, обновленные заменяются на месте по
// id, удаленные вырезаются по id; клиент никогда не пересортировывает.
type TodoStore struct {
	mu    sync.RWMutex
	todos []*entity.Todo

	api         TodoAPI
	principal   PrincipalSource
	memberships MembershipSource
	pending     *pendingSet
	log         *log.Logger
}

// NewTodoStore создает хранилище todo
func NewTodoStore(api TodoAPI, principal PrincipalSource, memberships MembershipSource, logger *log.Logger) *TodoStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TodoStore{
		api:         api,
		principal:   principal,
		memberships: memberships,
		pending:     newPendingSet(),
		log:         logger,
	}
}

// List запрашивает todo у сервера с серверной фильтрацией, замещает
// локальную коллекцию и возвращает ее. Фильтр только пробрасывается:
// локальная дофильтрация разошлась бы с авторитетным списком сервера.
func (s *TodoStore) List(ctx context.Context, filter entity.TodoFilter) ([]*entity.Todo, error) {
	todos, err := s.api.ListTodos(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.todos = todos
	s.mu.Unlock()

	return s.Snapshot(), nil
}

// Snapshot возвращает копию локальной коллекции в серверном порядке
func (s *TodoStore) Snapshot() []*entity.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		out = append(out, todo.Clone())
	}
	return out
}

// Get возвращает локальную копию todo по id
func (s *TodoStore) Get(id string) *entity.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if todo := s.find(id); todo != nil {
		return todo.Clone()
	}
	return nil
}

// Create создает todo. Создателем становится действующий principal;
// completed по умолчанию false. Локально todo появляется сразу как
// placeholder и замещается авторитетной записью сервера при commit.
func (s *TodoStore) Create(ctx context.Context, input entity.CreateTodoInput) (*entity.Todo, error) {
	p := s.principal.Principal()
	if p == nil {
		return nil, domainErrors.PermissionDenied("not authenticated")
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, domainErrors.Validation("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, domainErrors.Validation("description is required")
	}
	if input.TeamID == "" {
		return nil, domainErrors.Validation("team is required")
	}
	if !p.IsAdmin() {
		team := s.memberships.TeamByID(input.TeamID)
		if !team.HasMember(p.ID) {
			return nil, domainErrors.Validation("team is not one the principal belongs to")
		}
	}

	placeholder := &entity.Todo{
		ID:             "pending-" + uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Completed:      input.Completed,
		TeamID:         input.TeamID,
		CreatorID:      p.ID,
		AllowedEditors: []string{},
	}

	token, _ := s.pending.begin(placeholder.ID)

	s.mu.Lock()
	s.todos = append(s.todos, placeholder)
	s.mu.Unlock()

	created, err := s.api.CreateTodo(ctx, input)
	if err != nil {
		// Откат: placeholder убирается, коллекция возвращается к прежнему виду
		if s.pending.finish(placeholder.ID, token) {
			s.removeByID(placeholder.ID)
		}
		return nil, err
	}

	if s.pending.finish(placeholder.ID, token) {
		s.replaceByID(placeholder.ID, created)
	}
	s.log.Debug("todo created", "id", created.ID)
	return created.Clone(), nil
}

// Update применяет частичное обновление todo. Проверка прав локальная
// и синхронная: при отказе сетевой вызов не делается.
func (s *TodoStore) Update(ctx context.Context, id string, patch entity.TodoPatch) (*entity.Todo, error) {
	prior, err := s.authorize(id, access.CanEdit, "edit")
	if err != nil {
		return nil, err
	}

	token, ok := s.pending.begin(id)
	if !ok {
		return nil, domainErrors.Busy("mutation already pending for this todo")
	}

	optimistic := prior.Clone()
	applyPatch(optimistic, patch)
	s.replaceByID(id, optimistic)

	updated, err := s.api.UpdateTodo(ctx, id, patch)
	if err != nil {
		if s.pending.finish(id, token) {
			s.replaceByID(id, prior)
		}
		return nil, err
	}

	if s.pending.finish(id, token) {
		s.replaceByID(id, updated)
	}
	return updated.Clone(), nil
}

// Delete удаляет todo; переход необратим
func (s *TodoStore) Delete(ctx context.Context, id string) error {
	prior, err := s.authorize(id, access.CanDelete, "delete")
	if err != nil {
		return err
	}

	token, ok := s.pending.begin(id)
	if !ok {
		return domainErrors.Busy("mutation already pending for this todo")
	}

	index := s.removeByID(id)

	if err := s.api.DeleteTodo(ctx, id); err != nil {
		if s.pending.finish(id, token) {
			s.insertAt(index, prior)
		}
		return err
	}

	s.pending.finish(id, token)
	s.log.Debug("todo deleted", "id", id)
	return nil
}

// ShareWith целиком заменяет список явных редакторов todo. Переданные
// идентификаторы, не состоящие в команде todo, молча отбрасываются:
// делиться можно только с теми, кто сейчас видит эту команду.
func (s *TodoStore) ShareWith(ctx context.Context, id string, userIDs []string) (*entity.Todo, error) {
	prior, err := s.authorize(id, access.CanShare, "share")
	if err != nil {
		return nil, err
	}

	team := s.memberships.TeamByID(prior.TeamID)
	editors := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] || !team.HasMember(userID) {
			continue
		}
		seen[userID] = true
		editors = append(editors, userID)
	}

	token, ok := s.pending.begin(id)
	if !ok {
		return nil, domainErrors.Busy("mutation already pending for this todo")
	}

	optimistic := prior.Clone()
	optimistic.AllowedEditors = editors
	s.replaceByID(id, optimistic)

	shared, err := s.api.ShareTodo(ctx, id, editors)
	if err != nil {
		if s.pending.finish(id, token) {
			s.replaceByID(id, prior)
		}
		return nil, err
	}

	if s.pending.finish(id, token) {
		s.replaceByID(id, shared)
	}
	return shared.Clone(), nil
}

// CascadeRevoke убирает пользователя из AllowedEditors всех todo
// команды. Вызывается Team Directory после подтвержденного удаления
// участника: членство ушло — явные права на его todo уходят следом.
func (s *TodoStore) CascadeRevoke(teamID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for i, todo := range s.todos {
		if todo.TeamID != teamID || !todo.HasEditor(userID) {
			continue
		}
		cp := todo.Clone()
		editors := cp.AllowedEditors[:0]
		for _, editorID := range cp.AllowedEditors {
			if editorID != userID {
				editors = append(editors, editorID)
			}
		}
		cp.AllowedEditors = editors
		s.todos[i] = cp
		revoked++
	}
	if revoked > 0 {
		s.log.Debug("cascade revocation", "team", teamID, "user", userID, "todos", revoked)
	}
}

// authorize возвращает копию todo, если у principal есть требуемое право
func (s *TodoStore) authorize(id string, capability func(*entity.User, *entity.Todo, *entity.Team) bool, action string) (*entity.Todo, error) {
	p := s.principal.Principal()
	if p == nil {
		return nil, domainErrors.PermissionDenied("not authenticated")
	}

	s.mu.RLock()
	todo := s.find(id)
	s.mu.RUnlock()
	if todo == nil {
		return nil, domainErrors.NewDomainError("NOT_FOUND", "todo not found", domainErrors.ErrNotFound)
	}

	// Решение вычисляется заново на каждую операцию
	team := s.memberships.TeamByID(todo.TeamID)
	if !capability(p, todo, team) {
		return nil, domainErrors.PermissionDenied("principal may not " + action + " this todo")
	}
	return todo.Clone(), nil
}

func applyPatch(todo *entity.Todo, patch entity.TodoPatch) {
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
}

// find ищет todo по id; вызывается под блокировкой
func (s *TodoStore) find(id string) *entity.Todo {
	for _, todo := range s.todos {
		if todo.ID == id {
			return todo
		}
	}
	return nil
}

// replaceByID заменяет запись на месте, не меняя порядок
func (s *TodoStore) replaceByID(id string, todo *entity.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.todos {
		if existing.ID == id {
			s.todos[i] = todo.Clone()
			return
		}
	}
}

// removeByID вырезает запись и возвращает ее прежнюю позицию
func (s *TodoStore) removeByID(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.todos {
		if existing.ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return i
		}
	}
	return -1
}

// insertAt возвращает запись на прежнюю позицию при откате удаления
func (s *TodoStore) insertAt(index int, todo *entity.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.todos) {
		index = len(s.todos)
	}
	s.todos = append(s.todos, nil)
	copy(s.todos[index+1:], s.todos[index:])
	s.todos[index] = todo
}
