package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// ListUsers выполняет GET /users
func (c *Client) ListUsers(ctx context.Context) ([]*entity.User, error) {
	var dtos []userDTO
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &dtos, true); err != nil {
		return nil, err
	}
	users := make([]*entity.User, 0, len(dtos))
	for _, dto := range dtos {
		users = append(users, toUserEntity(dto))
	}
	return users, nil
}

// CreateUser выполняет POST /users
func (c *Client) CreateUser(ctx context.Context, input entity.CreateUserInput) (*entity.User, error) {
	req := createUserRequest{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	}
	var dto userDTO
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &dto, true); err != nil {
		return nil, err
	}
	return toUserEntity(dto), nil
}

// UpdateUser выполняет PUT /users/:id
func (c *Client) UpdateUser(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	req := updateUserRequest{Name: patch.Name, Email: patch.Email, Role: patch.Role}
	var dto userDTO
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, req, &dto, true); err != nil {
		return nil, err
	}
	return toUserEntity(dto), nil
}

// DeleteUser выполняет DELETE /users/:id
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil, true)
}
