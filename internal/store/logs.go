package store

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/teamtodo/teamtodo-client/internal/access"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

// LogReader — read-only проекция журнала действий. Журнал доступен
// только админам; для прочих запрос отклоняется локально, без сетевого
// вызова. Записи хранятся в порядке сервера (по убыванию времени) и
// никогда не пересортировываются.
type LogReader struct {
	mu      sync.RWMutex
	entries []*entity.AuditLogEntry

	api       LogAPI
	principal PrincipalSource
	log       *log.Logger
}

// NewLogReader создает читатель журнала
func NewLogReader(api LogAPI, principal PrincipalSource, logger *log.Logger) *LogReader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LogReader{api: api, principal: principal, log: logger}
}

// Query запрашивает журнал с фильтрацией по актору и интервалу времени
func (r *LogReader) Query(ctx context.Context, filter entity.LogFilter) ([]*entity.AuditLogEntry, error) {
	p := r.principal.Principal()
	if p == nil {
		return nil, domainErrors.PermissionDenied("not authenticated")
	}
	if !access.CanReadLogs(p) {
		return nil, domainErrors.PermissionDenied("only admins may read the audit log")
	}

	entries, err := r.api.ListLogs(ctx, filter)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	return r.Snapshot(), nil
}

// Snapshot возвращает копию последних полученных записей
func (r *LogReader) Snapshot() []*entity.AuditLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.AuditLogEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		cp := *entry
		out = append(out, &cp)
	}
	return out
}
