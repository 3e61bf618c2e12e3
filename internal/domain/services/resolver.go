package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/matching"
	"github.com/avbykov/printbridge/internal/utils"
)

// MappingResolver поиск сопоставлений товар/вариант -> файлы со сквозным
// кэшем чтения в Redis. Кэш инвалидируется сервисом сопоставлений при
// любой записи.
type MappingResolver struct {
	storage  storage.MappingStorageInterface
	cache    interfaces.CachePort
	logger   interfaces.LoggerPort
	cacheTTL time.Duration
}

// NewMappingResolver создает резолвер сопоставлений. cache может быть nil,
// тогда каждый запрос идет в хранилище.
func NewMappingResolver(st storage.MappingStorageInterface, cache interfaces.CachePort, log interfaces.LoggerPort, cacheTTL time.Duration) *MappingResolver {
	return &MappingResolver{storage: st, cache: cache, logger: log, cacheTTL: cacheTTL}
}

// mappingCacheKey ключ кэша для пары (product, variant)
func mappingCacheKey(productID int64, variantID *int64) string {
	variant := "-"
	if variantID != nil {
		variant = strconv.FormatInt(*variantID, 10)
	}
	return "mapping:" + strconv.FormatInt(productID, 10) + ":" + variant
}

// Resolve ищет сопоставление: сначала точное по (product, variant), затем
// фолбэк уровня товара. utils.ErrMappingNotFound, если нет ни того, ни
// другого. Найденная запись со SkipQueue == true — это успешное
// разрешение, решение о пропуске принимает вызывающий.
func (r *MappingResolver) Resolve(ctx context.Context, productID int64, variantID *int64) (*models.Mapping, error) {
	key := mappingCacheKey(productID, variantID)

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key); err == nil {
			var m models.Mapping
			if err := json.Unmarshal(data, &m); err == nil {
				return &m, nil
			}
			// Битое значение в кэше не должно ломать разрешение
			r.logger.WarnWithContext(ctx, "Некорректное значение в кэше сопоставлений",
				interfaces.LogField{Key: "key", Value: key})
		} else if !errors.Is(err, utils.ErrCacheMiss) {
			r.logger.WarnWithContext(ctx, "Ошибка чтения кэша сопоставлений",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	m, err := r.storage.GetMapping(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
				r.logger.WarnWithContext(ctx, "Ошибка записи кэша сопоставлений",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}
	}

	return m, nil
}

// FileResolver превращает имя файла в идентификатор каталога внешней
// очереди. Поисковые движки каталогов индексируют частичные совпадения
// непредсказуемо, поэтому один запрос ненадежен: резолвер перебирает
// варианты запроса от более специфичных к менее, останавливаясь на первом
// точном совпадении нормализованных имен.
type FileResolver struct {
	catalog printqueue.CatalogPort
	logger  interfaces.LoggerPort
}

func NewFileResolver(catalog printqueue.CatalogPort, log interfaces.LoggerPort) *FileResolver {
	return &FileResolver{catalog: catalog, logger: log}
}

// queryVariants строит упорядоченный список вариантов поискового запроса
// без дубликатов: буквальное имя, имя без расширения, затем нормализованные
// токены базы длиннее двух символов
func queryVariants(fileName string) []string {
	trimmed := strings.TrimSpace(fileName)
	base := matching.StripExtension(trimmed)

	variants := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)

	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(trimmed)
	add(base)
	for _, token := range matching.Tokens(base) {
		if utf8.RuneCountInString(token) > 2 {
			add(token)
		}
	}

	return variants
}

// ResolveFileID ищет идентификатор файла по имени.
// utils.ErrFileNotFound только после исчерпания всех вариантов запроса;
// ошибка транспорта прерывает перебор и уходит наверх как ошибка апстрима.
func (r *FileResolver) ResolveFileID(ctx context.Context, fileName string) (int64, error) {
	target := matching.Normalize(strings.TrimSpace(fileName))
	if target == "" {
		return 0, utils.ErrEmptyFileName
	}

	for _, variant := range queryVariants(fileName) {
		candidates, err := r.catalog.Search(ctx, variant)
		if err != nil {
			return 0, fmt.Errorf("поиск по варианту %q: %w", variant, err)
		}

		for _, c := range candidates {
			if matching.Normalize(c.FullName) == target || matching.Normalize(c.Name) == target {
				r.logger.DebugWithContext(ctx, "Файл разрешен",
					interfaces.LogField{Key: "file_name", Value: fileName},
					interfaces.LogField{Key: "file_id", Value: c.ID},
					interfaces.LogField{Key: "query", Value: variant})
				return c.ID, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: %s", utils.ErrFileNotFound, fileName)
}
