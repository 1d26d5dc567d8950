package entity

import "time"

// Todo принадлежит ровно одной команде. CreatorID неизменяем после
// создания; создатель всегда неявно имеет права edit/share, даже если
// его нет в AllowedEditors. Каждый id в AllowedEditors обязан быть
// текущим участником команды todo.
type Todo struct {
	ID             string
	Title          string
	Description    string
	Completed      bool
	TeamID         string
	CreatorID      string
	AllowedEditors []string
	CreatedAt      time.Time
}

// HasEditor сообщает, есть ли пользователь в явном списке редакторов
func (t *Todo) HasEditor(userID string) bool {
	if t == nil {
		return false
	}
	for _, id := range t.AllowedEditors {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone возвращает независимую копию todo
func (t *Todo) Clone() *Todo {
	if t == nil {
		return nil
	}
	cp := *t
	cp.AllowedEditors = append([]string(nil), t.AllowedEditors...)
	return &cp
}

// TodoFilter описывает серверную фильтрацию списка todo.
// Присутствующие поля комбинируются через AND; отсутствующие не
// накладывают ограничений. Title — регистронезависимая подстрока,
// вычисляется на сервере.
type TodoFilter struct {
	Team      string
	Completed *bool
	Title     string
}

// TodoPatch описывает частичное обновление todo
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// CreateTodoInput входные данные для создания todo
type CreateTodoInput struct {
	Title       string
	Description string
	TeamID      string
	Completed   bool
}
