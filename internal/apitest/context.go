package apitest

import (
	"context"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

type ctxKey struct{}

func contextWithPrincipal(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// principalFrom возвращает аутентифицированного пользователя запроса
func principalFrom(ctx context.Context) *entity.User {
	u, _ := ctx.Value(ctxKey{}).(*entity.User)
	return u
}
