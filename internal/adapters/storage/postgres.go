package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MappingStorageInterface определяет операции хранилища
type MappingStorageInterface interface {
	// Mapping методы
	GetMapping(ctx context.Context, productID int64, variantID *int64) (*models.Mapping, error)
	UpsertMapping(ctx context.Context, mapping *models.Mapping) error
	DeleteMapping(ctx context.Context, productID int64, variantID *int64) error
	ListMappings(ctx context.Context) ([]*models.Mapping, error)

	// UnmatchedLineItem методы
	CreateUnmatched(ctx context.Context, item *models.UnmatchedLineItem) error
	GetUnmatched(ctx context.Context, id string) (*models.UnmatchedLineItem, error)
	ListUnmatched(ctx context.Context) ([]*models.UnmatchedLineItem, error)
	MarkUnmatchedQueued(ctx context.Context, id string, queuedAt time.Time) error
	DeleteUnmatched(ctx context.Context, id string) error

	// Настройки (именованные строковые значения)
	GetSetting(ctx context.Context, name string) (string, error)
	SetSetting(ctx context.Context, name, value string) error
	DeleteSetting(ctx context.Context, name string) error
}

// MappingStoragePort хранилище вместе с управлением транзакциями
type MappingStoragePort interface {
	MappingStorageInterface

	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error

	Close() error
}

// contextKey тип для ключей контекста
type contextKey string

const txKey contextKey = "transaction"

// MappingStorage реализация хранилища для PostgreSQL
type MappingStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает новый экземпляр MappingStorage
func NewPostgresStorage(ctx context.Context, connectionString string) (*MappingStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &MappingStorage{pool: pool}, nil
}

// Close закрывает соединение с БД
func (r *MappingStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает исполнителя запросов (транзакцию или пул)
func (r *MappingStorage) getExecutor(ctx context.Context) executor {
	if tx := r.getTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// getTx получает транзакцию из контекста
func (r *MappingStorage) getTx(ctx context.Context) pgx.Tx {
	txFromCtx, ok := ctx.Value(txKey).(pgx.Tx)
	if !ok {
		return nil
	}
	return txFromCtx
}

// BeginTx начинает новую транзакцию
func (r *MappingStorage) BeginTx(ctx context.Context) (context.Context, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return context.WithValue(ctx, txKey, tx), nil
}

// CommitTx фиксирует транзакцию
func (r *MappingStorage) CommitTx(ctx context.Context) error {
	tx := r.getTx(ctx)
	if tx == nil {
		return errors.New("no transaction in context")
	}
	return tx.Commit(ctx)
}

// RollbackTx откатывает транзакцию
func (r *MappingStorage) RollbackTx(ctx context.Context) error {
	tx := r.getTx(ctx)
	if tx == nil {
		return errors.New("no transaction in context")
	}
	return tx.Rollback(ctx)
}

// ---------------------------- mappings ----------------------------

// GetMapping ищет сопоставление для пары (product, variant).
// Сначала точное совпадение по варианту, затем фолбэк на запись уровня
// товара (variant_id IS NULL). utils.ErrMappingNotFound, если нет ни той,
// ни другой.
func (r *MappingStorage) GetMapping(ctx context.Context, productID int64, variantID *int64) (*models.Mapping, error) {
	e := r.getExecutor(ctx)

	if variantID != nil {
		m, err := r.scanMapping(e.QueryRow(ctx, `
			SELECT id, product_id, variant_id, file_names, legacy_file_name, skip_queue, created_at, updated_at
			FROM mappings
			WHERE product_id = $1 AND variant_id = $2
		`, productID, *variantID))
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to get mapping: %w", err)
		}
	}

	m, err := r.scanMapping(e.QueryRow(ctx, `
		SELECT id, product_id, variant_id, file_names, legacy_file_name, skip_queue, created_at, updated_at
		FROM mappings
		WHERE product_id = $1 AND variant_id IS NULL
	`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	return m, nil
}

// scanMapping читает одну строку таблицы mappings
func (r *MappingStorage) scanMapping(row pgx.Row) (*models.Mapping, error) {
	var (
		m         models.Mapping
		fileNames []byte
		legacy    *string
	)
	err := row.Scan(&m.ID, &m.ProductID, &m.VariantID, &fileNames, &legacy, &m.SkipQueue, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(fileNames) > 0 {
		if err := json.Unmarshal(fileNames, &m.FileNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file names: %w", err)
		}
	}
	if legacy != nil {
		m.LegacyFileName = *legacy
	}
	return &m, nil
}

// Уникальность обеспечивают два частичных индекса, поэтому предикат
// индекса повторяется в ON CONFLICT — иначе Postgres не выведет арбитра
const (
	upsertMappingVariantQuery = `
		INSERT INTO mappings (id, product_id, variant_id, file_names, legacy_file_name, skip_queue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, variant_id) WHERE variant_id IS NOT NULL
		DO UPDATE SET
			file_names = $4,
			legacy_file_name = $5,
			skip_queue = $6,
			updated_at = $8
	`
	upsertMappingProductQuery = `
		INSERT INTO mappings (id, product_id, variant_id, file_names, legacy_file_name, skip_queue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id) WHERE variant_id IS NULL
		DO UPDATE SET
			file_names = $4,
			legacy_file_name = $5,
			skip_queue = $6,
			updated_at = $8
	`
)

// UpsertMapping сохраняет сопоставление. Уникальность пары
// (product_id, variant_id) обеспечивается индексами БД.
func (r *MappingStorage) UpsertMapping(ctx context.Context, mapping *models.Mapping) error {
	e := r.getExecutor(ctx)

	if mapping.ID == "" {
		mapping.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now

	fileNames, err := json.Marshal(mapping.FileNames)
	if err != nil {
		return fmt.Errorf("failed to marshal file names: %w", err)
	}

	var legacy *string
	if mapping.LegacyFileName != "" {
		legacy = &mapping.LegacyFileName
	}

	query := upsertMappingVariantQuery
	if mapping.VariantID == nil {
		query = upsertMappingProductQuery
	}

	_, err = e.Exec(ctx, query,
		mapping.ID, mapping.ProductID, mapping.VariantID, fileNames, legacy,
		mapping.SkipQueue, mapping.CreatedAt, mapping.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping: %w", err)
	}
	return nil
}

// DeleteMapping удаляет сопоставление для пары (product, variant)
func (r *MappingStorage) DeleteMapping(ctx context.Context, productID int64, variantID *int64) error {
	e := r.getExecutor(ctx)

	var (
		tag pgconn.CommandTag
		err error
	)
	if variantID != nil {
		tag, err = e.Exec(ctx, `DELETE FROM mappings WHERE product_id = $1 AND variant_id = $2`, productID, *variantID)
	} else {
		tag, err = e.Exec(ctx, `DELETE FROM mappings WHERE product_id = $1 AND variant_id IS NULL`, productID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrMappingNotFound
	}
	return nil
}

// ListMappings возвращает все сопоставления для административного интерфейса
func (r *MappingStorage) ListMappings(ctx context.Context) ([]*models.Mapping, error) {
	e := r.getExecutor(ctx)

	rows, err := e.Query(ctx, `
		SELECT id, product_id, variant_id, file_names, legacy_file_name, skip_queue, created_at, updated_at
		FROM mappings
		ORDER BY product_id, variant_id NULLS FIRST
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.Mapping
	for rows.Next() {
		m, err := r.scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// ---------------------------- unmatched ----------------------------

// CreateUnmatched добавляет запись о неразобранной позиции (append-only)
func (r *MappingStorage) CreateUnmatched(ctx context.Context, item *models.UnmatchedLineItem) error {
	e := r.getExecutor(ctx)

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var orderName *string
	if item.OrderName != "" {
		orderName = &item.OrderName
	}
	var sku *string
	if item.SKU != "" {
		sku = &item.SKU
	}

	_, err := e.Exec(ctx, `
		INSERT INTO unmatched_line_items (id, order_id, order_name, product_id, variant_id, sku, quantity, reason, queued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.OrderID, orderName, item.ProductID, item.VariantID, sku,
		item.Quantity, item.Reason, item.QueuedAt, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create unmatched line item: %w", err)
	}
	return nil
}

// GetUnmatched получает запись по ID
func (r *MappingStorage) GetUnmatched(ctx context.Context, id string) (*models.UnmatchedLineItem, error) {
	e := r.getExecutor(ctx)

	row := e.QueryRow(ctx, `
		SELECT id, order_id, order_name, product_id, variant_id, sku, quantity, reason, queued_at, created_at
		FROM unmatched_line_items
		WHERE id = $1
	`, id)

	item, err := scanUnmatched(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrUnmatchedNotFound
		}
		return nil, fmt.Errorf("failed to get unmatched line item: %w", err)
	}
	return item, nil
}

func scanUnmatched(row pgx.Row) (*models.UnmatchedLineItem, error) {
	var (
		item      models.UnmatchedLineItem
		orderName *string
		sku       *string
	)
	err := row.Scan(&item.ID, &item.OrderID, &orderName, &item.ProductID, &item.VariantID,
		&sku, &item.Quantity, &item.Reason, &item.QueuedAt, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if orderName != nil {
		item.OrderName = *orderName
	}
	if sku != nil {
		item.SKU = *sku
	}
	return &item, nil
}

// ListUnmatched возвращает записи, начиная с новых
func (r *MappingStorage) ListUnmatched(ctx context.Context) ([]*models.UnmatchedLineItem, error) {
	e := r.getExecutor(ctx)

	rows, err := e.Query(ctx, `
		SELECT id, order_id, order_name, product_id, variant_id, sku, quantity, reason, queued_at, created_at
		FROM unmatched_line_items
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched line items: %w", err)
	}
	defer rows.Close()

	var items []*models.UnmatchedLineItem
	for rows.Next() {
		item, err := scanUnmatched(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unmatched line item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkUnmatchedQueued отмечает запись как поставленную в очередь вручную
func (r *MappingStorage) MarkUnmatchedQueued(ctx context.Context, id string, queuedAt time.Time) error {
	e := r.getExecutor(ctx)

	tag, err := e.Exec(ctx, `
		UPDATE unmatched_line_items SET queued_at = $2 WHERE id = $1
	`, id, queuedAt)
	if err != nil {
		return fmt.Errorf("failed to mark unmatched line item queued: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrUnmatchedNotFound
	}
	return nil
}

// DeleteUnmatched удаляет запись (действие "отклонить" оператора)
func (r *MappingStorage) DeleteUnmatched(ctx context.Context, id string) error {
	e := r.getExecutor(ctx)

	tag, err := e.Exec(ctx, `DELETE FROM unmatched_line_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unmatched line item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrUnmatchedNotFound
	}
	return nil
}

// ---------------------------- settings ----------------------------

// GetSetting читает именованную настройку
func (r *MappingStorage) GetSetting(ctx context.Context, name string) (string, error) {
	e := r.getExecutor(ctx)

	var value string
	err := e.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", utils.ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting сохраняет именованную настройку
func (r *MappingStorage) SetSetting(ctx context.Context, name, value string) error {
	e := r.getExecutor(ctx)

	_, err := e.Exec(ctx, `
		INSERT INTO settings (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET value = $2, updated_at = $3
	`, name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// DeleteSetting удаляет именованную настройку
func (r *MappingStorage) DeleteSetting(ctx context.Context, name string) error {
	e := r.getExecutor(ctx)

	tag, err := e.Exec(ctx, `DELETE FROM settings WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrSettingNotFound
	}
	return nil
}
