package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TeamID      string `json:"team_id"`
	Completed   bool   `json:"completed"`
}

type updateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type shareTodoRequest struct {
	UserIDs []string `json:"user_ids"`
}

// ListTodos выполняет GET /todos с серверной фильтрацией.
// Клиент только пробрасывает фильтр: повторная фильтрация на клиенте
// разошлась бы с авторитетным представлением сервера.
func (c *Client) ListTodos(ctx context.Context, filter entity.TodoFilter) ([]*entity.Todo, error) {
	query := url.Values{}
	if filter.Team != "" {
		query.Set("team", filter.Team)
	}
	if filter.Completed != nil {
		query.Set("completed", strconv.FormatBool(*filter.Completed))
	}
	if filter.Title != "" {
		query.Set("title", filter.Title)
	}

	var dtos []todoDTO
	if err := c.do(ctx, http.MethodGet, "/todos", query, nil, &dtos, true); err != nil {
		return nil, err
	}

	todos := make([]*entity.Todo, 0, len(dtos))
	for _, dto := range dtos {
		todos = append(todos, toTodoEntity(dto))
	}
	return todos, nil
}

// CreateTodo выполняет POST /todos
func (c *Client) CreateTodo(ctx context.Context, input entity.CreateTodoInput) (*entity.Todo, error) {
	req := createTodoRequest{
		Title:       input.Title,
		Description: input.Description,
		TeamID:      input.TeamID,
		Completed:   input.Completed,
	}
	var dto todoDTO
	if err := c.do(ctx, http.MethodPost, "/todos", nil, req, &dto, true); err != nil {
		return nil, err
	}
	return toTodoEntity(dto), nil
}

// UpdateTodo выполняет PUT /todos/:id с частичным обновлением
func (c *Client) UpdateTodo(ctx context.Context, id string, patch entity.TodoPatch) (*entity.Todo, error) {
	req := updateTodoRequest{
		Title:       patch.Title,
		Description: patch.Description,
		Completed:   patch.Completed,
	}
	var dto todoDTO
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), nil, req, &dto, true); err != nil {
		return nil, err
	}
	return toTodoEntity(dto), nil
}

// DeleteTodo выполняет DELETE /todos/:id
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, nil, true)
}

// ShareTodo выполняет POST /todos/:id/share, целиком заменяя список редакторов
func (c *Client) ShareTodo(ctx context.Context, id string, userIDs []string) (*entity.Todo, error) {
	var dto todoDTO
	err := c.do(ctx, http.MethodPost, "/todos/"+url.PathEscape(id)+"/share", nil, shareTodoRequest{UserIDs: userIDs}, &dto, true)
	if err != nil {
		return nil, err
	}
	return toTodoEntity(dto), nil
}
