package utils

import "errors"

// ----------------- storage ------------------
var (
	ErrStorageEmptyHostName       = errors.New("host name is empty")
	ErrStorageInvalidPortNumber   = errors.New("port number is empty")
	ErrStorageEmptyUsername       = errors.New("username is empty")
	ErrStorageEmptyPassword       = errors.New("password is empty")
	ErrStorageInvalidDatabaseName = errors.New("database name is empty")
	ErrStorageInvalidSslMode      = errors.New("SSL mode is invalid")
	ErrStorageInvalidPoolSize     = errors.New("pool size is invalid")
	ErrStorageInvalidTimeout      = errors.New("timeout is invalid")
)

// ----------------- cache ------------------
var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// ----------------- resolution ------------------
var (
	// ErrMappingNotFound нет сопоставления ни для (product, variant), ни для (product, nil)
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrFileNotFound каталог не вернул файл ни по одному варианту запроса
	ErrFileNotFound = errors.New("file not found in catalog")

	// ErrUnmatchedNotFound запись о неразобранной позиции не найдена
	ErrUnmatchedNotFound = errors.New("unmatched line item not found")

	// ErrSettingNotFound именованная настройка отсутствует
	ErrSettingNotFound = errors.New("setting not found")
)

// ----------------- validation ------------------
var (
	ErrEmptyFileName    = errors.New("file name is empty")
	ErrEmptyQuery       = errors.New("query is empty")
	ErrInvalidProductId = errors.New("invalid product id")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)

// ----------------- configuration ------------------
var (
	// ErrQueueNotConfigured не заданы адрес или ключ API очереди печати.
	// Ошибка проваливает только операции, которым нужна очередь,
	// а не запуск процесса целиком.
	ErrQueueNotConfigured = errors.New("print queue is not configured")
)
