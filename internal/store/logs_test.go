package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

func TestLogReader_AdminOnly(t *testing.T) {
	api := &fakeLogAPI{}
	r := NewLogReader(api, &stubPrincipal{user: creatorU1}, nil)

	_, err := r.Query(context.Background(), entity.LogFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrPermissionDenied)
	assert.Zero(t, api.callCount(), "для не-админа запрос не отправляется")
}

func TestLogReader_PreservesServerOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeLogAPI{entries: []*entity.AuditLogEntry{
		{ID: "l3", Timestamp: now, ActorID: "u1", Action: "todo.update"},
		{ID: "l2", Timestamp: now.Add(-time.Hour), ActorID: "u2", Action: "todo.create"},
		{ID: "l1", Timestamp: now.Add(-2 * time.Hour), ActorID: "u1", Action: "team.create"},
	}}
	r := NewLogReader(api, &stubPrincipal{user: adminA1}, nil)

	entries, err := r.Query(context.Background(), entity.LogFilter{Actor: "u1"})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Порядок сервера (по убыванию времени) сохранен как есть
	assert.Equal(t, "l3", entries[0].ID)
	assert.Equal(t, "l2", entries[1].ID)
	assert.Equal(t, "l1", entries[2].ID)

	assert.Len(t, r.Snapshot(), 3)
}
