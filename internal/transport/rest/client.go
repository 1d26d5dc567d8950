// Package rest реализует клиент REST-сервиса задач. Все неоднородности
// протокола (разные конверты ответов, форматы ошибок) нормализуются
// здесь, на границе; внутрь ядра они не проникают.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

// TokenSource отдает текущий bearer-токен сессии; пустая строка — нет сессии
type TokenSource interface {
	Token() string
}

// Options конфигурация REST-клиента
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource

	// OnUnauthorized вызывается на 401/403 до возврата ошибки:
	// сервер отверг токен, сессию нужно немедленно сбросить
	OnUnauthorized func()

	Logger *log.Logger
}

// Client HTTP-клиент сервиса задач
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            *log.Logger
}

// New создает REST-клиент
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		log:            logger,
	}
}

// do выполняет запрос и декодирует успешный ответ в out (если out != nil).
// withAuth добавляет заголовок Authorization из TokenSource.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, withAuth bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.NewDomainError(
			"UNAVAILABLE",
			"request failed: "+err.Error(),
			domainErrors.ErrUnavailable,
		)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainErrors.NewDomainError(
			"UNAVAILABLE",
			"failed to read response body",
			domainErrors.ErrUnavailable,
		)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Принудительный разлогин: токен сбрасывается до возврата ошибки
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return domainErrors.NewDomainError(
			"UNAUTHORIZED",
			errorMessage(data, "session rejected by server"),
			domainErrors.ErrUnauthorized,
		)
	}

	if resp.StatusCode >= 400 {
		return c.serverError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	return decodePayload(data, out)
}

// serverError переводит ответ с ошибкой в доменную ошибку
func (c *Client) serverError(status int, data []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		return domainErrors.NewDomainError(
			envelope.Error.Code,
			envelope.Error.Message,
			domainErrors.ByCode(envelope.Error.Code),
		)
	}

	// Без структурированного тела судим по статусу
	switch status {
	case http.StatusNotFound:
		return domainErrors.NewDomainError("NOT_FOUND", "resource not found", domainErrors.ErrNotFound)
	case http.StatusConflict:
		return domainErrors.NewDomainError("CONFLICT", "state conflict", domainErrors.ErrConflict)
	case http.StatusBadRequest:
		return domainErrors.NewDomainError("VALIDATION", "invalid request", domainErrors.ErrValidation)
	default:
		return domainErrors.NewDomainError(
			"UNAVAILABLE",
			fmt.Sprintf("unexpected status %d", status),
			domainErrors.ErrUnavailable,
		)
	}
}

// decodePayload декодирует успешный ответ, принимая оба конверта:
// часть эндпоинтов возвращает полезную нагрузку как есть, часть
// оборачивает в {"data": ...}
func decodePayload(data []byte, out interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 {
		data = envelope.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domainErrors.NewDomainError(
			"UNAVAILABLE",
			"failed to decode response: "+err.Error(),
			domainErrors.ErrUnavailable,
		)
	}
	return nil
}

func errorMessage(data []byte, fallback string) string {
	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return fallback
}
