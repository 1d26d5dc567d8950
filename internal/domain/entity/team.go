package entity

import "time"

// Team хранит состав участников как множество идентификаторов,
// уникальное по user id. Порядок в MemberIDs — порядок сервера,
// клиент его не пересортировывает.
type Team struct {
	ID        string
	Name      string
	MemberIDs []string
	CreatedAt time.Time
}

// HasMember сообщает, состоит ли пользователь в команде
func (t *Team) HasMember(userID string) bool {
	if t == nil {
		return false
	}
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone возвращает независимую копию команды
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	cp := *t
	cp.MemberIDs = append([]string(nil), t.MemberIDs...)
	return &cp
}
