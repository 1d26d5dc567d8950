package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// ListLogs выполняет GET /logs. Сервер возвращает записи по убыванию
// времени; клиент порядок не меняет.
func (c *Client) ListLogs(ctx context.Context, filter entity.LogFilter) ([]*entity.AuditLogEntry, error) {
	query := url.Values{}
	if filter.Actor != "" {
		query.Set("actor", filter.Actor)
	}
	if !filter.StartDate.IsZero() {
		query.Set("startDate", filter.StartDate.Format(time.RFC3339))
	}
	if !filter.EndDate.IsZero() {
		query.Set("endDate", filter.EndDate.Format(time.RFC3339))
	}

	var dtos []logEntryDTO
	if err := c.do(ctx, http.MethodGet, "/logs", query, nil, &dtos, true); err != nil {
		return nil, err
	}

	entries := make([]*entity.AuditLogEntry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, toLogEntity(dto))
	}
	return entries, nil
}
