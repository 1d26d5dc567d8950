package rest

import (
	"time"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// errorResponse представляет ответ с ошибкой
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail содержит детали ошибки
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// userDTO представляет пользователя
type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// teamDTO представляет команду; состав приходит как вложенные
// пользователи и нормализуется в множество идентификаторов
type teamDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []userDTO `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// todoDTO представляет todo
type todoDTO struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Completed      bool      `json:"completed"`
	TeamID         string    `json:"team_id"`
	CreatorID      string    `json:"creator_id"`
	AllowedEditors []string  `json:"allowed_editors"`
	CreatedAt      time.Time `json:"created_at"`
}

// logEntryDTO представляет запись журнала действий
type logEntryDTO struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type,omitempty"`
	EntityID    string    `json:"entity_id,omitempty"`
	Description string    `json:"description"`
}

// Маппинг функции

// toUserEntity преобразует DTO в entity
func toUserEntity(dto userDTO) *entity.User {
	return &entity.User{
		ID:        dto.ID,
		Name:      dto.Name,
		Email:     dto.Email,
		Role:      dto.Role,
		CreatedAt: dto.CreatedAt,
	}
}

// toTeamEntity преобразует DTO в entity
func toTeamEntity(dto teamDTO) *entity.Team {
	memberIDs := make([]string, 0, len(dto.Members))
	for _, m := range dto.Members {
		memberIDs = append(memberIDs, m.ID)
	}
	return &entity.Team{
		ID:        dto.ID,
		Name:      dto.Name,
		MemberIDs: memberIDs,
		CreatedAt: dto.CreatedAt,
	}
}

// toTodoEntity преобразует DTO в entity
func toTodoEntity(dto todoDTO) *entity.Todo {
	editors := dto.AllowedEditors
	if editors == nil {
		editors = []string{}
	}
	return &entity.Todo{
		ID:             dto.ID,
		Title:          dto.Title,
		Description:    dto.Description,
		Completed:      dto.Completed,
		TeamID:         dto.TeamID,
		CreatorID:      dto.CreatorID,
		AllowedEditors: editors,
		CreatedAt:      dto.CreatedAt,
	}
}

// toLogEntity преобразует DTO в entity
func toLogEntity(dto logEntryDTO) *entity.AuditLogEntry {
	return &entity.AuditLogEntry{
		ID:          dto.ID,
		Timestamp:   dto.Timestamp,
		ActorID:     dto.ActorID,
		Action:      dto.Action,
		EntityType:  dto.EntityType,
		EntityID:    dto.EntityID,
		Description: dto.Description,
	}
}
