// Package access содержит чистую логику проверки прав доступа.
// Все решения вычисляются заново на каждую операцию: результаты нельзя
// кешировать через границу мутации, потому что изменение состава
// команды или списка редакторов инвалидирует прежние решения.
package access

import "github.com/teamtodo/teamtodo-client/internal/domain/entity"

// Порядок проверки правил:
//  1. роль admin дает любую возможность безусловно;
//  2. иначе principal обязан быть участником команды todo;
//  3. edit/share/delete дополнительно требуют, чтобы principal был
//     создателем либо входил в AllowedEditors.
//
// team — текущий состав владеющей команды; nil означает, что команда
// неизвестна клиенту, и для не-админа это отсутствие любых прав.
// Некорректный todo (пустой TeamID) трактуется так же.

// CanView сообщает, может ли principal видеть todo
func CanView(p *entity.User, todo *entity.Todo, team *entity.Team) bool {
	if p == nil || todo == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return memberOfOwningTeam(p, todo, team)
}

// CanEdit сообщает, может ли principal редактировать todo
func CanEdit(p *entity.User, todo *entity.Todo, team *entity.Team) bool {
	if p == nil || todo == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if !memberOfOwningTeam(p, todo, team) {
		return false
	}
	return todo.CreatorID == p.ID || todo.HasEditor(p.ID)
}

// CanShare сообщает, может ли principal изменять список редакторов todo
func CanShare(p *entity.User, todo *entity.Todo, team *entity.Team) bool {
	return CanEdit(p, todo, team)
}

// CanDelete сообщает, может ли principal удалить todo
func CanDelete(p *entity.User, todo *entity.Todo, team *entity.Team) bool {
	return CanEdit(p, todo, team)
}

// CanManageTeam сообщает, может ли principal изменять состав команд
func CanManageTeam(p *entity.User) bool {
	return p.IsAdmin()
}

// CanManageUsers сообщает, может ли principal администрировать пользователей
func CanManageUsers(p *entity.User) bool {
	return p.IsAdmin()
}

// CanReadLogs сообщает, может ли principal читать журнал действий
func CanReadLogs(p *entity.User) bool {
	return p.IsAdmin()
}

func memberOfOwningTeam(p *entity.User, todo *entity.Todo, team *entity.Team) bool {
	if todo.TeamID == "" || team == nil || team.ID != todo.TeamID {
		return false
	}
	return team.HasMember(p.ID)
}
