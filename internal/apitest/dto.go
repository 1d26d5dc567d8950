package apitest

import (
	"time"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// Проводные представления; формы совпадают с контрактом сервиса

type userJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type teamJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Members   []userJSON `json:"members"`
	CreatedAt time.Time  `json:"created_at"`
}

type todoJSON struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Completed      bool      `json:"completed"`
	TeamID         string    `json:"team_id"`
	CreatorID      string    `json:"creator_id"`
	AllowedEditors []string  `json:"allowed_editors"`
	CreatedAt      time.Time `json:"created_at"`
}

type logJSON struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type,omitempty"`
	EntityID    string    `json:"entity_id,omitempty"`
	Description string    `json:"description"`
}

func userToJSON(u entity.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// teamToJSON разворачивает состав в пользовательские объекты;
// вызывается под блокировкой
func (s *Server) teamToJSON(t *entity.Team) teamJSON {
	members := make([]userJSON, 0, len(t.MemberIDs))
	for _, id := range t.MemberIDs {
		if record := s.findUser(id); record != nil {
			members = append(members, userToJSON(record.User))
		}
	}
	return teamJSON{
		ID:        t.ID,
		Name:      t.Name,
		Members:   members,
		CreatedAt: t.CreatedAt,
	}
}

func todoToJSON(t *entity.Todo) todoJSON {
	editors := t.AllowedEditors
	if editors == nil {
		editors = []string{}
	}
	return todoJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Completed:      t.Completed,
		TeamID:         t.TeamID,
		CreatorID:      t.CreatorID,
		AllowedEditors: editors,
		CreatedAt:      t.CreatedAt,
	}
}

func logToJSON(e *entity.AuditLogEntry) logJSON {
	return logJSON{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		ActorID:     e.ActorID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
	}
}
