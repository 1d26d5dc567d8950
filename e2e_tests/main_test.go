package e2e_tests

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtodo/teamtodo-client/internal/apitest"
	"github.com/teamtodo/teamtodo-client/internal/client"
	"github.com/teamtodo/teamtodo-client/internal/config"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

// окружение теста: эталонный сервис + фабрика клиентов

type env struct {
	server *apitest.Server
	cfg    *config.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()
	server := apitest.NewServer()
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return &env{
		server: server,
		cfg: &config.Config{
			APIBaseURL:  httpServer.URL,
			HTTPTimeout: 5 * time.Second,
		},
	}
}

// login создает клиент и открывает сессию указанного пользователя
func (e *env) login(t *testing.T, email, password string) *client.Client {
	t.Helper()
	c := client.New(e.cfg, nil)
	_, err := c.Login(context.Background(), email, password)
	require.NoError(t, err)
	return c
}

// TestShareRevokeFlow прогоняет основной сценарий: шаринг прав на todo
// и их каскадный отзыв при удалении участника из команды
func TestShareRevokeFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	u1ID := e.server.SeedUser("U1", "u1@corp", "pw1", entity.RoleUser)
	u2ID := e.server.SeedUser("U2", "u2@corp", "pw2", entity.RoleUser)

	adminClient := e.login(t, "admin@corp", "admin_pw")
	u1Client := e.login(t, "u1@corp", "pw1")
	u2Client := e.login(t, "u2@corp", "pw2")

	// U1 создает команду; участников добавляет админ
	team, err := u1Client.Teams.CreateTeam(ctx, "Eng")
	require.NoError(t, err)

	_, err = adminClient.Teams.List(ctx)
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, u1ID)
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, u2ID)
	require.NoError(t, err)

	// U1 создает todo в команде
	_, err = u1Client.Teams.List(ctx)
	require.NoError(t, err)
	todo, err := u1Client.Todos.Create(ctx, entity.CreateTodoInput{
		Title:       "Fix bug",
		Description: "crash on save",
		TeamID:      team.ID,
	})
	require.NoError(t, err)

	// U2 видит todo, но редактировать не может
	_, err = u2Client.Teams.List(ctx)
	require.NoError(t, err)
	todos, err := u2Client.Todos.List(ctx, entity.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, todos, 1)

	completed := true
	_, err = u2Client.Todos.Update(ctx, todo.ID, entity.TodoPatch{Completed: &completed})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrPermissionDenied)

	// U1 делится todo с U2 — у U2 появляются права
	shared, err := u1Client.Todos.ShareWith(ctx, todo.ID, []string{u2ID})
	require.NoError(t, err)
	assert.Equal(t, []string{u2ID}, shared.AllowedEditors)

	_, err = u2Client.Todos.List(ctx, entity.TodoFilter{})
	require.NoError(t, err)
	updated, err := u2Client.Todos.Update(ctx, todo.ID, entity.TodoPatch{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	// Админ убирает U2 из команды — права отзываются каскадно
	_, err = adminClient.Todos.List(ctx, entity.TodoFilter{})
	require.NoError(t, err)
	_, err = adminClient.Teams.RemoveMember(ctx, team.ID, u2ID)
	require.NoError(t, err)

	adminTodos := adminClient.Todos.Snapshot()
	require.Len(t, adminTodos, 1)
	assert.NotContains(t, adminTodos[0].AllowedEditors, u2ID)

	// И на сервере, авторитетно
	refreshed, err := adminClient.Todos.List(ctx, entity.TodoFilter{})
	require.NoError(t, err)
	assert.NotContains(t, refreshed[0].AllowedEditors, u2ID)

	// У U2, отставшего от событий, попытка редактирования падает на
	// серверной проверке
	_, err = u2Client.Todos.Update(ctx, todo.ID, entity.TodoPatch{Title: strPtr("sneaky")})
	require.Error(t, err)
}

// TestFilterFlow проверяет серверную фильтрацию и ее композицию
func TestFilterFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	adminID := e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	adminClient := e.login(t, "admin@corp", "admin_pw")

	team, err := adminClient.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)

	seed := []struct {
		title     string
		completed bool
	}{
		{"Fix login bug", true},
		{"Fix logout bug", false},
		{"Write docs", true},
	}
	for _, item := range seed {
		todo, err := adminClient.Todos.Create(ctx, entity.CreateTodoInput{
			Title:       item.title,
			Description: "task",
			TeamID:      team.ID,
		})
		require.NoError(t, err)
		if item.completed {
			done := true
			_, err = adminClient.Todos.Update(ctx, todo.ID, entity.TodoPatch{Completed: &done})
			require.NoError(t, err)
		}
	}

	completed := true
	byCompleted, err := adminClient.Todos.List(ctx, entity.TodoFilter{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, byCompleted, 2)
	for _, todo := range byCompleted {
		assert.True(t, todo.Completed)
	}

	byTitle, err := adminClient.Todos.List(ctx, entity.TodoFilter{Title: "fix"})
	require.NoError(t, err)
	assert.Len(t, byTitle, 2, "подстрока без учета регистра")

	// Комбинация фильтров эквивалентна пересечению результатов
	both, err := adminClient.Todos.List(ctx, entity.TodoFilter{Title: "fix", Completed: &completed})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Fix login bug", both[0].Title)
}

// TestRollbackFlow проверяет, что неудачная мутация не оставляет следов
func TestRollbackFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	adminID := e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	adminClient := e.login(t, "admin@corp", "admin_pw")

	team, err := adminClient.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)
	_, err = adminClient.Todos.Create(ctx, entity.CreateTodoInput{
		Title:       "Stable",
		Description: "d",
		TeamID:      team.ID,
	})
	require.NoError(t, err)

	before := adminClient.Todos.Snapshot()

	e.server.FailNextTodoMutation = true
	_, err = adminClient.Todos.Update(ctx, before[0].ID, entity.TodoPatch{Title: strPtr("broken")})
	require.Error(t, err)

	// Откат полный: состояние равно состоянию до вызова
	assert.Equal(t, before, adminClient.Todos.Snapshot())
}

// TestConcurrentUpdateBusy: вторая мутация того же todo, пока первая
// в полете, отклоняется локально с BUSY
func TestConcurrentUpdateBusy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	adminID := e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	adminClient := e.login(t, "admin@corp", "admin_pw")

	team, err := adminClient.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)
	todo, err := adminClient.Todos.Create(ctx, entity.CreateTodoInput{
		Title:       "Contended",
		Description: "d",
		TeamID:      team.ID,
	})
	require.NoError(t, err)

	// Первая мутация виснет на сервере до сигнала
	entered := make(chan struct{})
	release := make(chan struct{})
	e.server.Hooks.BeforeTodoUpdate = func() {
		close(entered)
		<-release
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := adminClient.Todos.Update(ctx, todo.ID, entity.TodoPatch{Title: strPtr("first")})
		firstDone <- err
	}()
	<-entered

	e.server.Hooks.BeforeTodoUpdate = nil
	_, err = adminClient.Todos.Update(ctx, todo.ID, entity.TodoPatch{Title: strPtr("second")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)
}

// TestForcedLogout проверяет принудительный сброс сессии на 401
func TestForcedLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	userID := e.server.SeedUser("Ghost", "ghost@corp", "pw", entity.RoleUser)

	adminClient := e.login(t, "admin@corp", "admin_pw")
	ghostClient := e.login(t, "ghost@corp", "pw")
	require.True(t, ghostClient.Authenticated())

	// Пользователя удаляют; его токен перестает быть действительным
	_, err := adminClient.Users.List(ctx)
	require.NoError(t, err)
	require.NoError(t, adminClient.Users.Delete(ctx, userID))

	_, err = ghostClient.Todos.List(ctx, entity.TodoFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
	assert.False(t, ghostClient.Authenticated(), "сессия сброшена немедленно")
}

// TestAuditLogFlow проверяет чтение журнала и его порядок
func TestAuditLogFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	adminID := e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	e.server.SeedUser("User", "user@corp", "pw", entity.RoleUser)

	adminClient := e.login(t, "admin@corp", "admin_pw")
	userClient := e.login(t, "user@corp", "pw")

	team, err := adminClient.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = adminClient.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)
	_, err = adminClient.Todos.Create(ctx, entity.CreateTodoInput{
		Title:       "Audit me",
		Description: "d",
		TeamID:      team.ID,
	})
	require.NoError(t, err)

	entries, err := adminClient.Logs.Query(ctx, entity.LogFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	// Порядок по убыванию времени, последняя запись первой
	assert.Equal(t, "todo.create", entries[0].Action)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i-1].Timestamp.Before(entries[i].Timestamp))
	}

	byActor, err := adminClient.Logs.Query(ctx, entity.LogFilter{Actor: adminID})
	require.NoError(t, err)
	for _, entry := range byActor {
		assert.Equal(t, adminID, entry.ActorID)
	}

	// Не-админу отказывают локально
	_, err = userClient.Logs.Query(ctx, entity.LogFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrPermissionDenied)
}

// TestUserAdministration проверяет CRUD пользователей под админом
func TestUserAdministration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.server.SeedUser("Admin", "admin@corp", "admin_pw", entity.RoleAdmin)
	adminClient := e.login(t, "admin@corp", "admin_pw")

	created, err := adminClient.Users.Create(ctx, entity.CreateUserInput{
		Name:     "New Admin",
		Email:    "new@corp",
		Password: "pw",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, created.Role)

	// Новый пользователь может войти
	newClient := e.login(t, "new@corp", "pw")
	assert.True(t, newClient.Principal().IsAdmin())

	demoted := entity.RoleUser
	updated, err := adminClient.Users.Update(ctx, created.ID, entity.UserPatch{Role: &demoted})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, updated.Role)

	users, err := adminClient.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

// TestRegistrationFlow проверяет саморегистрацию с фиксированной ролью
func TestRegistrationFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := client.New(e.cfg, nil)
	user, err := c.Register(ctx, "Self", "self@corp", "pw")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.False(t, c.Authenticated(), "регистрация не открывает сессию")

	_, err = c.Login(ctx, "self@corp", "pw")
	require.NoError(t, err)
	assert.True(t, c.Authenticated())
}

func strPtr(s string) *string { return &s }
