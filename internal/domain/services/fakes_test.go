package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
)

// fakeStorage хранилище в памяти для тестов сервисов
type fakeStorage struct {
	mu        sync.Mutex
	mappings  map[string]*models.Mapping
	unmatched []*models.UnmatchedLineItem
	settings  map[string]string

	getMappingErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		mappings: make(map[string]*models.Mapping),
		settings: make(map[string]string),
	}
}

func mappingKey(productID int64, variantID *int64) string {
	variant := "-"
	if variantID != nil {
		variant = strconv.FormatInt(*variantID, 10)
	}
	return strconv.FormatInt(productID, 10) + ":" + variant
}

func (f *fakeStorage) putMapping(m *models.Mapping) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings[mappingKey(m.ProductID, m.VariantID)] = m
}

func (f *fakeStorage) GetMapping(ctx context.Context, productID int64, variantID *int64) (*models.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getMappingErr != nil {
		return nil, f.getMappingErr
	}

	if variantID != nil {
		if m, ok := f.mappings[mappingKey(productID, variantID)]; ok {
			return m, nil
		}
	}
	if m, ok := f.mappings[mappingKey(productID, nil)]; ok {
		return m, nil
	}
	return nil, utils.ErrMappingNotFound
}

func (f *fakeStorage) UpsertMapping(ctx context.Context, mapping *models.Mapping) error {
	f.putMapping(mapping)
	return nil
}

func (f *fakeStorage) DeleteMapping(ctx context.Context, productID int64, variantID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := mappingKey(productID, variantID)
	if _, ok := f.mappings[key]; !ok {
		return utils.ErrMappingNotFound
	}
	delete(f.mappings, key)
	return nil
}

func (f *fakeStorage) ListMappings(ctx context.Context) ([]*models.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mappings := make([]*models.Mapping, 0, len(f.mappings))
	for _, m := range f.mappings {
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (f *fakeStorage) CreateUnmatched(ctx context.Context, item *models.UnmatchedLineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = strconv.Itoa(len(f.unmatched) + 1)
	}
	f.unmatched = append(f.unmatched, item)
	return nil
}

func (f *fakeStorage) GetUnmatched(ctx context.Context, id string) (*models.UnmatchedLineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.unmatched {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, utils.ErrUnmatchedNotFound
}

func (f *fakeStorage) ListUnmatched(ctx context.Context) ([]*models.UnmatchedLineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.UnmatchedLineItem(nil), f.unmatched...), nil
}

func (f *fakeStorage) MarkUnmatchedQueued(ctx context.Context, id string, queuedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.unmatched {
		if item.ID == id {
			item.QueuedAt = &queuedAt
			return nil
		}
	}
	return utils.ErrUnmatchedNotFound
}

func (f *fakeStorage) DeleteUnmatched(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.unmatched {
		if item.ID == id {
			f.unmatched = append(f.unmatched[:i], f.unmatched[i+1:]...)
			return nil
		}
	}
	return utils.ErrUnmatchedNotFound
}

func (f *fakeStorage) GetSetting(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.settings[name]
	if !ok {
		return "", utils.ErrSettingNotFound
	}
	return value, nil
}

func (f *fakeStorage) SetSetting(ctx context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[name] = value
	return nil
}

func (f *fakeStorage) DeleteSetting(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.settings[name]; !ok {
		return utils.ErrSettingNotFound
	}
	delete(f.settings, name)
	return nil
}

func (f *fakeStorage) BeginTx(ctx context.Context) (context.Context, error) { return ctx, nil }
func (f *fakeStorage) CommitTx(ctx context.Context) error                   { return nil }
func (f *fakeStorage) RollbackTx(ctx context.Context) error                 { return nil }

func (f *fakeStorage) Close() error { return nil }

// fakeCatalog каталог внешней очереди с заранее заданными ответами
type fakeCatalog struct {
	mu          sync.Mutex
	results     map[string][]models.FileCandidate
	groups      []models.QueueGroup
	searchCalls []string
	searchErr   error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{results: make(map[string][]models.FileCandidate)}
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]models.FileCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

func (f *fakeCatalog) ListGroups(ctx context.Context) ([]models.QueueGroup, error) {
	return f.groups, nil
}

func (f *fakeCatalog) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchCalls...)
}

// queuedItem зафиксированный вызов постановки в очередь
type queuedItem struct {
	fileID   int64
	quantity int
	groupID  int64
}

// fakeQueue записывает постановки заданий в очередь
type fakeQueue struct {
	mu     sync.Mutex
	items  []queuedItem
	addErr error
}

func (f *fakeQueue) AddItem(ctx context.Context, fileID int64, quantity int, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.items = append(f.items, queuedItem{fileID: fileID, quantity: quantity, groupID: groupID})
	return nil
}

// fakeMessaging считает опубликованные события по темам
type fakeMessaging struct {
	mu        sync.Mutex
	published map[string]int
}

func newFakeMessaging() *fakeMessaging {
	return &fakeMessaging{published: make(map[string]int)}
}

func (f *fakeMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic]++
	return nil
}

func (f *fakeMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	return f.Publish(ctx, topic, message)
}

func (f *fakeMessaging) Close() error { return nil }
