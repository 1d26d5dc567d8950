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

// UserDirectory владеет локальным реестром пользователей. Все операции
// административные и отклоняются локально для прочих ролей; обычная
// регистрация идет через auth-эндпоинт и в реестр не пишет.
type UserDirectory struct {
	mu    sync.RWMutex
	users []*entity.User

	api       UserAPI
	principal PrincipalSource
	pending   *pendingSet
	log       *log.Logger
}

// NewUserDirectory создает реестр пользователей
func NewUserDirectory(api UserAPI, principal PrincipalSource, logger *log.Logger) *UserDirectory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &UserDirectory{
		api:       api,
		principal: principal,
		pending:   newPendingSet(),
		log:       logger,
	}
}

// List запрашивает пользователей у сервера и замещает локальный реестр
func (d *UserDirectory) List(ctx context.Context) ([]*entity.User, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}

	users, err := d.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()

	return d.Snapshot(), nil
}

// Snapshot возвращает копию локального реестра в серверном порядке
func (d *UserDirectory) Snapshot() []*entity.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*entity.User, 0, len(d.users))
	for _, user := range d.users {
		cp := *user
		out = append(out, &cp)
	}
	return out
}

// Create создает пользователя с выбранной ролью
func (d *UserDirectory) Create(ctx context.Context, input entity.CreateUserInput) (*entity.User, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, domainErrors.Validation("name and email are required")
	}
	if input.Password == "" {
		return nil, domainErrors.Validation("password is required")
	}
	if input.Role != entity.RoleUser && input.Role != entity.RoleAdmin {
		return nil, domainErrors.Validation("unknown role")
	}

	placeholder := &entity.User{
		ID:    "pending-" + uuid.NewString(),
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	}

	token, _ := d.pending.begin(placeholder.ID)

	d.mu.Lock()
	d.users = append(d.users, placeholder)
	d.mu.Unlock()

	created, err := d.api.CreateUser(ctx, input)
	if err != nil {
		if d.pending.finish(placeholder.ID, token) {
			d.removeByID(placeholder.ID)
		}
		return nil, err
	}

	if d.pending.finish(placeholder.ID, token) {
		d.replaceByID(placeholder.ID, created)
	}
	d.log.Debug("user created", "id", created.ID, "role", created.Role)
	cp := *created
	return &cp, nil
}

// Update применяет частичное обновление пользователя, включая смену роли
func (d *UserDirectory) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	if patch.Role != nil && *patch.Role != entity.RoleUser && *patch.Role != entity.RoleAdmin {
		return nil, domainErrors.Validation("unknown role")
	}

	d.mu.RLock()
	existing := d.find(id)
	d.mu.RUnlock()
	if existing == nil {
		return nil, domainErrors.NewDomainError("NOT_FOUND", "user not found", domainErrors.ErrNotFound)
	}
	prior := *existing

	token, ok := d.pending.begin(id)
	if !ok {
		return nil, domainErrors.Busy("mutation already pending for this user")
	}

	optimistic := prior
	if patch.Name != nil {
		optimistic.Name = *patch.Name
	}
	if patch.Email != nil {
		optimistic.Email = *patch.Email
	}
	if patch.Role != nil {
		optimistic.Role = *patch.Role
	}
	d.replaceByID(id, &optimistic)

	updated, err := d.api.UpdateUser(ctx, id, patch)
	if err != nil {
		if d.pending.finish(id, token) {
			d.replaceByID(id, &prior)
		}
		return nil, err
	}

	if d.pending.finish(id, token) {
		d.replaceByID(id, updated)
	}
	cp := *updated
	return &cp, nil
}

// Delete удаляет пользователя
func (d *UserDirectory) Delete(ctx context.Context, id string) error {
	if err := d.authorize(); err != nil {
		return err
	}

	d.mu.RLock()
	existing := d.find(id)
	d.mu.RUnlock()
	if existing == nil {
		return domainErrors.NewDomainError("NOT_FOUND", "user not found", domainErrors.ErrNotFound)
	}
	prior := *existing

	token, ok := d.pending.begin(id)
	if !ok {
		return domainErrors.Busy("mutation already pending for this user")
	}

	index := d.removeByID(id)

	if err := d.api.DeleteUser(ctx, id); err != nil {
		if d.pending.finish(id, token) {
			d.insertAt(index, &prior)
		}
		return err
	}

	d.pending.finish(id, token)
	return nil
}

func (d *UserDirectory) authorize() error {
	p := d.principal.Principal()
	if p == nil {
		return domainErrors.PermissionDenied("not authenticated")
	}
	if !access.CanManageUsers(p) {
		return domainErrors.PermissionDenied("only admins may manage users")
	}
	return nil
}

// find ищет пользователя по id; вызывается под блокировкой
func (d *UserDirectory) find(id string) *entity.User {
	for _, user := range d.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}

func (d *UserDirectory) replaceByID(id string, user *entity.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.users {
		if existing.ID == id {
			cp := *user
			d.users[i] = &cp
			return
		}
	}
}

func (d *UserDirectory) removeByID(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.users {
		if existing.ID == id {
			d.users = append(d.users[:i], d.users[i+1:]...)
			return i
		}
	}
	return -1
}

func (d *UserDirectory) insertAt(index int, user *entity.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index > len(d.users) {
		index = len(d.users)
	}
	d.users = append(d.users, nil)
	copy(d.users[index+1:], d.users[index:])
	d.users[index] = user
}
