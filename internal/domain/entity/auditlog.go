package entity

import "time"

// AuditLogEntry — запись журнала действий. Журнал append-only:
// клиент его никогда не изменяет и не удаляет.
type AuditLogEntry struct {
	ID          string
	Timestamp   time.Time
	ActorID     string
	Action      string
	EntityType  string
	EntityID    string
	Description string
}

// LogFilter описывает фильтрацию журнала по актору и интервалу времени
type LogFilter struct {
	Actor     string
	StartDate time.Time
	EndDate   time.Time
}
