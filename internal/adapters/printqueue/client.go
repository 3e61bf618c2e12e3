package printqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
)

// CatalogPort поисковые операции каталога внешней очереди печати
type CatalogPort interface {
	// Search ищет файлы каталога по текстовому запросу
	Search(ctx context.Context, query string) ([]models.FileCandidate, error)

	// ListGroups возвращает группы (направления) очереди
	ListGroups(ctx context.Context) ([]models.QueueGroup, error)
}

// QueuePort постановка заданий во внешнюю очередь
type QueuePort interface {
	// AddItem ставит файл в очередь с указанным количеством копий
	AddItem(ctx context.Context, fileID int64, quantity int, groupID int64) error
}

// Client HTTP-клиент внешнего сервиса очереди печати.
// Все вызовы блокирующие, с ограничением времени одного вызова;
// истекший таймаут для вызывающего неотличим от любой другой ошибки апстрима.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиента. ErrQueueNotConfigured, если не задан адрес:
// падать должен конкретный вызов, а не старт процесса, поэтому проверка
// здесь только на пустую строку, доступность сервиса не проверяется.
func NewClient(baseURL, apiKey string, callTimeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, utils.ErrQueueNotConfigured
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: callTimeout},
	}, nil
}

// fileResponse схема ответа поиска. Внешний JSON разбирается строго по
// схеме на границе, внутрь передаются только типизированные модели.
type fileResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
}

type searchResponse struct {
	Files []fileResponse `json:"files"`
}

type groupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listGroupsResponse struct {
	Groups []groupResponse `json:"groups"`
}

type addItemRequest struct {
	FileID   int64 `json:"file_id"`
	Quantity int   `json:"quantity"`
	GroupID  int64 `json:"group_id,omitempty"`
}

// Search реализация CatalogPort
func (c *Client) Search(ctx context.Context, query string) ([]models.FileCandidate, error) {
	var resp searchResponse
	endpoint := "/api/files/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("ошибка поиска по каталогу: %w", err)
	}

	candidates := make([]models.FileCandidate, 0, len(resp.Files))
	for _, f := range resp.Files {
		fullName := f.Name
		if f.Extension != "" {
			fullName = f.Name + "." + f.Extension
		}
		candidates = append(candidates, models.FileCandidate{
			ID:        f.ID,
			Name:      f.Name,
			Extension: f.Extension,
			FullName:  fullName,
		})
	}
	return candidates, nil
}

// ListGroups реализация CatalogPort
func (c *Client) ListGroups(ctx context.Context) ([]models.QueueGroup, error) {
	var resp listGroupsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/groups", nil, &resp); err != nil {
		return nil, fmt.Errorf("ошибка получения списка групп: %w", err)
	}

	groups := make([]models.QueueGroup, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		groups = append(groups, models.QueueGroup{ID: g.ID, Name: g.Name})
	}
	return groups, nil
}

// AddItem реализация QueuePort
func (c *Client) AddItem(ctx context.Context, fileID int64, quantity int, groupID int64) error {
	if quantity < 1 {
		return utils.ErrInvalidQuantity
	}

	req := addItemRequest{FileID: fileID, Quantity: quantity, GroupID: groupID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/items", req, nil); err != nil {
		return fmt.Errorf("ошибка постановки задания в очередь: %w", err)
	}
	return nil
}

// doJSON выполняет один HTTP-вызов с JSON телом и разбором JSON ответа
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка вызова %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("сервис очереди вернул статус %d для %s %s", resp.StatusCode, method, endpoint)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ошибка разбора ответа %s %s: %w", method, endpoint, err)
		}
	}
	return nil
}
