package entity

import "time"

// Роли пользователей. Роль авторитетна только со стороны сервера:
// клиент никогда не выводит административную роль из локального состояния.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

// IsAdmin сообщает, имеет ли пользователь административную роль
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CreateUserInput входные данные административного создания пользователя;
// в отличие от саморегистрации роль выбирается
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserPatch частичное обновление пользователя
type UserPatch struct {
	Name  *string
	Email *string
	Role  *string
}
