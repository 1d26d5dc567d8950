// Package client собирает ядро воедино: сессию, REST-транспорт и
// локальные хранилища, и предоставляет операции аутентификации.
package client

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/teamtodo/teamtodo-client/internal/config"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	"github.com/teamtodo/teamtodo-client/internal/session"
	"github.com/teamtodo/teamtodo-client/internal/store"
	"github.com/teamtodo/teamtodo-client/internal/transport/rest"
)

// Client — один экземпляр ядра на один клиентский процесс
type Client struct {
	api     *rest.Client
	session *session.Session
	log     *log.Logger

	Todos *store.TodoStore
	Teams *store.TeamDirectory
	Users *store.UserDirectory
	Logs  *store.LogReader
}

// New собирает клиент. Порядок связывания фиксированный: сессия гейтит
// транспорт, реестр команд поставляет составы в Todo Store, а Todo
// Store получает каскадный отзыв прав от реестра команд.
func New(cfg *config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sess := session.New()

	api := rest.New(rest.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Tokens:     sess,
		OnUnauthorized: func() {
			// Сервер отверг токен: принудительный разлогин
			logger.Warn("session rejected by server, logging out")
			sess.Clear()
		},
		Logger: logger,
	})

	teams := store.NewTeamDirectory(api, sess, logger)
	todos := store.NewTodoStore(api, sess, teams, logger)
	teams.OnMemberRemoved = todos.CascadeRevoke

	return &Client{
		api:     api,
		session: sess,
		log:     logger,
		Todos:   todos,
		Teams:   teams,
		Users:   store.NewUserDirectory(api, sess, logger),
		Logs:    store.NewLogReader(api, sess, logger),
	}
}

// Login аутентифицирует пользователя и инициализирует сессию
func (c *Client) Login(ctx context.Context, email, password string) (*entity.User, error) {
	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.session.Begin(result.Token, result.User)
	c.log.Info("logged in", "user", result.User.ID, "role", result.User.Role)
	return result.User, nil
}

// Register регистрирует нового пользователя; роль фиксируется сервером
// как user, сессия не открывается
func (c *Client) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	return c.api.Register(ctx, name, email, password)
}

// Logout завершает сессию и забывает токен
func (c *Client) Logout() {
	c.session.Clear()
	c.log.Info("logged out")
}

// Principal возвращает текущего аутентифицированного пользователя
func (c *Client) Principal() *entity.User {
	return c.session.Principal()
}

// Authenticated сообщает, есть ли активная сессия
func (c *Client) Authenticated() bool {
	return c.session.Authenticated()
}

// Summary возвращает сводку по локальным коллекциям для дашборда
func (c *Client) Summary() entity.Summary {
	todos := c.Todos.Snapshot()
	summary := entity.Summary{
		TotalTeams: len(c.Teams.Snapshot()),
		TotalTodos: len(todos),
	}
	for _, todo := range todos {
		if todo.Completed {
			summary.CompletedTodos++
		} else {
			summary.PendingTodos++
		}
	}
	return summary
}
