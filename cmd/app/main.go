package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/teamtodo/teamtodo-client/internal/client"
	"github.com/teamtodo/teamtodo-client/internal/config"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	email := os.Getenv("API_EMAIL")
	password := os.Getenv("API_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("API_EMAIL and API_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := client.New(cfg, logger)

	user, err := app.Login(ctx, email, password)
	if err != nil {
		log.Fatal("login failed", "err", err)
	}
	defer app.Logout()

	// Загружаем команды и задачи текущего пользователя
	teams, err := app.Teams.List(ctx)
	if err != nil {
		log.Fatal("failed to list teams", "err", err)
	}
	todos, err := app.Todos.List(ctx, entity.TodoFilter{})
	if err != nil {
		log.Fatal("failed to list todos", "err", err)
	}

	fmt.Printf("Signed in as %s (%s)\n\n", user.Name, user.Role)

	fmt.Println("Your Teams")
	if len(teams) == 0 {
		fmt.Println("  no teams")
	}
	for _, team := range teams {
		fmt.Printf("  %s (%d members)\n", team.Name, len(team.MemberIDs))
	}

	fmt.Println("\nTodos")
	if len(todos) == 0 {
		fmt.Println("  no todos")
	}
	for _, todo := range todos {
		status := " "
		if todo.Completed {
			status = "x"
		}
		fmt.Printf("  [%s] %s — %s\n", status, todo.Title, todo.Description)
	}

	summary := app.Summary()
	fmt.Printf("\n%d teams, %d todos (%d done, %d pending)\n",
		summary.TotalTeams, summary.TotalTodos, summary.CompletedTodos, summary.PendingTodos)
}
