package client_test

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
)

func newLoggedInClient(t *testing.T) (*client.Client, *apitest.Server, string) {
	t.Helper()

	server := apitest.NewServer()
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	adminID := server.SeedUser("Admin", "admin@corp", "pw", entity.RoleAdmin)

	c := client.New(&config.Config{
		APIBaseURL:  httpServer.URL,
		HTTPTimeout: 5 * time.Second,
	}, nil)
	_, err := c.Login(context.Background(), "admin@corp", "pw")
	require.NoError(t, err)
	return c, server, adminID
}

func TestLoginLogout(t *testing.T) {
	c, _, adminID := newLoggedInClient(t)

	require.True(t, c.Authenticated())
	assert.Equal(t, adminID, c.Principal().ID)
	assert.True(t, c.Principal().IsAdmin())

	c.Logout()
	assert.False(t, c.Authenticated())
	assert.Nil(t, c.Principal())
}

func TestSummary(t *testing.T) {
	c, _, adminID := newLoggedInClient(t)
	ctx := context.Background()

	team, err := c.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = c.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)

	for i, title := range []string{"one", "two", "three"} {
		todo, err := c.Todos.Create(ctx, entity.CreateTodoInput{
			Title:       title,
			Description: "d",
			TeamID:      team.ID,
		})
		require.NoError(t, err)
		if i == 0 {
			done := true
			_, err = c.Todos.Update(ctx, todo.ID, entity.TodoPatch{Completed: &done})
			require.NoError(t, err)
		}
	}

	summary := c.Summary()
	assert.Equal(t, entity.Summary{
		TotalTeams:     1,
		TotalTodos:     3,
		CompletedTodos: 1,
		PendingTodos:   2,
	}, summary)
}

// Каскадный отзыв доходит из реестра команд в хранилище todo через
// связывание в New
func TestCascadeWiring(t *testing.T) {
	c, server, adminID := newLoggedInClient(t)
	ctx := context.Background()

	memberID := server.SeedUser("Member", "m@corp", "pw", entity.RoleUser)

	team, err := c.Teams.CreateTeam(ctx, "Ops")
	require.NoError(t, err)
	_, err = c.Teams.AddMember(ctx, team.ID, adminID)
	require.NoError(t, err)
	_, err = c.Teams.AddMember(ctx, team.ID, memberID)
	require.NoError(t, err)

	todo, err := c.Todos.Create(ctx, entity.CreateTodoInput{
		Title:       "shared",
		Description: "d",
		TeamID:      team.ID,
	})
	require.NoError(t, err)
	_, err = c.Todos.ShareWith(ctx, todo.ID, []string{memberID})
	require.NoError(t, err)

	_, err = c.Teams.RemoveMember(ctx, team.ID, memberID)
	require.NoError(t, err)

	snapshot := c.Todos.Snapshot()
	require.Len(t, snapshot, 1)
	assert.NotContains(t, snapshot[0].AllowedEditors, memberID)
}
