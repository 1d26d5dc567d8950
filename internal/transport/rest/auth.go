package rest

import (
	"context"
	"net/http"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

// LoginResult результат успешного логина
type LoginResult struct {
	Token string
	User  *entity.User
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	User userDTO `json:"user"`
}

// Login выполняет POST /auth/login; credential не требует
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: resp.Token, User: toUserEntity(resp.User)}, nil
}

// Register выполняет POST /auth/register; роль фиксируется сервером как user
func (c *Client) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	var resp registerResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, registerRequest{Name: name, Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	return toUserEntity(resp.User), nil
}
