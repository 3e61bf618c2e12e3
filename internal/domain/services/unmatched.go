package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
)

// UnmatchedService операции оператора над записями о неразобранных
// позициях: просмотр, ручная постановка в очередь, отклонение
type UnmatchedService struct {
	storage  storage.MappingStoragePort
	files    *FileResolver
	queue    printqueue.QueuePort
	groups   *printqueue.GroupCache
	mappings *MappingService
	logger   interfaces.LoggerPort
}

func NewUnmatchedService(
	st storage.MappingStoragePort,
	files *FileResolver,
	queue printqueue.QueuePort,
	groups *printqueue.GroupCache,
	mappings *MappingService,
	log interfaces.LoggerPort,
) *UnmatchedService {
	return &UnmatchedService{
		storage:  st,
		files:    files,
		queue:    queue,
		groups:   groups,
		mappings: mappings,
		logger:   log,
	}
}

// List возвращает записи для операторского интерфейса
func (s *UnmatchedService) List(ctx context.Context) ([]*models.UnmatchedLineItem, error) {
	items, err := s.storage.ListUnmatched(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched line items: %w", err)
	}
	return items, nil
}

// ResolveManually ставит файл в очередь для неразобранной позиции с ее
// сохраненным количеством и отмечает запись. При persistMapping заодно
// создается/обновляется сопоставление, чтобы следующие заказы этого
// товара/варианта разрешались автоматически. Отметка записи и сохранение
// сопоставления выполняются в одной транзакции.
func (s *UnmatchedService) ResolveManually(ctx context.Context, id, fileName string, persistMapping bool) (*models.UnmatchedLineItem, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, utils.ErrEmptyFileName
	}

	item, err := s.storage.GetUnmatched(ctx, id)
	if err != nil {
		return nil, err
	}

	fileID, err := s.files.ResolveFileID(ctx, fileName)
	if err != nil {
		return nil, err
	}

	groupID, err := s.groups.GroupID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.queue.AddItem(ctx, fileID, item.Quantity, groupID); err != nil {
		return nil, fmt.Errorf("failed to queue file: %w", err)
	}

	queuedAt := time.Now().UTC()

	txCtx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.storage.MarkUnmatchedQueued(txCtx, id, queuedAt); err != nil {
		s.storage.RollbackTx(txCtx)
		return nil, err
	}

	if persistMapping {
		mapping := &models.Mapping{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			FileNames: []string{fileName},
		}
		if err := s.mappings.Upsert(txCtx, mapping); err != nil {
			s.storage.RollbackTx(txCtx)
			return nil, fmt.Errorf("failed to persist mapping: %w", err)
		}
	}

	if err := s.storage.CommitTx(txCtx); err != nil {
		s.storage.RollbackTx(txCtx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.InfoWithContext(ctx, "Неразобранная позиция поставлена в очередь вручную",
		interfaces.LogField{Key: "id", Value: id},
		interfaces.LogField{Key: "file_name", Value: fileName},
		interfaces.LogField{Key: "persist_mapping", Value: persistMapping})

	item.QueuedAt = &queuedAt
	return item, nil
}

// Dismiss удаляет запись без постановки в очередь
func (s *UnmatchedService) Dismiss(ctx context.Context, id string) error {
	if err := s.storage.DeleteUnmatched(ctx, id); err != nil {
		return err
	}
	s.logger.InfoWithContext(ctx, "Неразобранная позиция отклонена",
		interfaces.LogField{Key: "id", Value: id})
	return nil
}
