package services

import (
	"context"
	"fmt"

	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
)

// MappingService административные операции над сопоставлениями.
// Конвейер сопоставления не изменяет; запись возможна только отсюда
// (действия оператора и ручное разрешение неразобранной позиции).
type MappingService struct {
	storage storage.MappingStorageInterface
	cache   interfaces.CachePort
	logger  interfaces.LoggerPort
}

func NewMappingService(st storage.MappingStorageInterface, cache interfaces.CachePort, log interfaces.LoggerPort) *MappingService {
	return &MappingService{storage: st, cache: cache, logger: log}
}

// List возвращает все сопоставления
func (s *MappingService) List(ctx context.Context) ([]*models.Mapping, error) {
	return s.storage.ListMappings(ctx)
}

// Upsert сохраняет сопоставление и сбрасывает кэш чтения.
// Пустой список файлов допустим только вместе со skip_queue.
func (s *MappingService) Upsert(ctx context.Context, mapping *models.Mapping) error {
	if mapping.ProductID == 0 {
		return utils.ErrInvalidProductId
	}
	if len(mapping.FileNames) == 0 && mapping.LegacyFileName == "" && !mapping.SkipQueue {
		return utils.ErrEmptyFileName
	}

	if err := s.storage.UpsertMapping(ctx, mapping); err != nil {
		return err
	}

	s.invalidateCache(ctx, mapping.ProductID, mapping.VariantID)
	return nil
}

// Delete удаляет сопоставление и сбрасывает кэш чтения
func (s *MappingService) Delete(ctx context.Context, productID int64, variantID *int64) error {
	if productID == 0 {
		return utils.ErrInvalidProductId
	}

	if err := s.storage.DeleteMapping(ctx, productID, variantID); err != nil {
		return err
	}

	s.invalidateCache(ctx, productID, variantID)
	return nil
}

// invalidateCache сбрасывает кэшированные сопоставления товара.
// Сбрасываются все варианты товара: запись уровня товара меняет результат
// фолбэка для любого варианта.
func (s *MappingService) invalidateCache(ctx context.Context, productID int64, variantID *int64) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("mapping:%d:*", productID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.WarnWithContext(ctx, "Ошибка сброса кэша сопоставлений",
			interfaces.LogField{Key: "pattern", Value: pattern},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
