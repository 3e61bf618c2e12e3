package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
)

// PipelineService конвейер разрешения позиций заказа.
// Для каждой позиции: сопоставление -> (пропуск | разрешение файлов ->
// постановка в очередь), при любой частной неудаче — запись о
// неразобранной позиции. Сбой одного файла не прерывает обработку
// остальных файлов и позиций.
type PipelineService struct {
	mappings  *MappingResolver
	files     *FileResolver
	queue     printqueue.QueuePort
	groups    *printqueue.GroupCache
	storage   storage.MappingStorageInterface
	messaging interfaces.MessagingPort
	logger    interfaces.LoggerPort
}

func NewPipelineService(
	mappings *MappingResolver,
	files *FileResolver,
	queue printqueue.QueuePort,
	groups *printqueue.GroupCache,
	st storage.MappingStorageInterface,
	messaging interfaces.MessagingPort,
	log interfaces.LoggerPort,
) *PipelineService {
	return &PipelineService{
		mappings:  mappings,
		files:     files,
		queue:     queue,
		groups:    groups,
		storage:   st,
		messaging: messaging,
		logger:    log,
	}
}

// ProcessOrder обрабатывает заказ. Возвращаемая ошибка всегда nil для
// внутренних неудач разрешения: источник вебхуков повторяет доставку при
// любом не-2xx ответе, и бесконечный ретрай заказа, который никогда не
// разрешится иначе, хуже, чем запись для ручного разбора. Позиции и файлы
// внутри одного вызова обрабатываются строго последовательно, порядок
// постановки в очередь детерминирован.
func (s *PipelineService) ProcessOrder(ctx context.Context, order *models.Order) error {
	ctx = context.WithValue(ctx, "order_id", order.OrderID)

	for _, item := range order.LineItems {
		if item.ProductID == 0 {
			// Некорректная позиция от источника: записывать нечего,
			// сопоставить ее не с чем
			s.logger.WarnWithContext(ctx, "Позиция без идентификатора товара пропущена",
				interfaces.LogField{Key: "sku", Value: item.SKU})
			continue
		}
		s.processLineItem(ctx, order, item)
	}

	return nil
}

// processLineItem обрабатывает одну позицию заказа
func (s *PipelineService) processLineItem(ctx context.Context, order *models.Order, item models.LineItem) {
	mapping, err := s.mappings.Resolve(ctx, item.ProductID, item.VariantID)
	if err != nil {
		if errors.Is(err, utils.ErrMappingNotFound) {
			s.recordUnmatched(ctx, order, item, models.ReasonNoMapping)
			return
		}
		// Отказ хранилища или кэша — та же изоляция, что и для файла
		s.logger.ErrorWithContext(ctx, "Ошибка поиска сопоставления",
			interfaces.LogField{Key: "product_id", Value: item.ProductID},
			interfaces.LogField{Key: "error", Value: err.Error()})
		s.recordUnmatched(ctx, order, item, models.ReasonQueueingFailed)
		return
	}

	if mapping.SkipQueue {
		// Осознанное решение оператора, не сбой: ни задания, ни записи
		s.logger.DebugWithContext(ctx, "Позиция пропущена по настройке сопоставления",
			interfaces.LogField{Key: "product_id", Value: item.ProductID})
		return
	}

	for _, fileName := range mapping.EffectiveFiles() {
		if err := s.queueFile(ctx, fileName, item.Quantity); err != nil {
			s.logger.ErrorWithContext(ctx, "Не удалось поставить файл в очередь",
				interfaces.LogField{Key: "file_name", Value: fileName},
				interfaces.LogField{Key: "product_id", Value: item.ProductID},
				interfaces.LogField{Key: "error", Value: err.Error()})
			s.recordUnmatched(ctx, order, item, models.ReasonQueueingFailed)
			continue
		}

		s.logger.InfoWithContext(ctx, "Файл поставлен в очередь",
			interfaces.LogField{Key: "file_name", Value: fileName},
			interfaces.LogField{Key: "quantity", Value: item.Quantity})
		s.publishEvent(ctx, models.TopicLineItemQueued, order, item, fileName, "")
	}
}

// queueFile разрешает идентификатор файла и ставит задание в очередь
func (s *PipelineService) queueFile(ctx context.Context, fileName string, quantity int) error {
	fileID, err := s.files.ResolveFileID(ctx, fileName)
	if err != nil {
		return err
	}

	groupID, err := s.groups.GroupID(ctx)
	if err != nil {
		return err
	}

	if err := s.queue.AddItem(ctx, fileID, quantity, groupID); err != nil {
		return err
	}

	queuedFiles.Inc()
	return nil
}

// recordUnmatched создает запись о неразобранной позиции и публикует событие
func (s *PipelineService) recordUnmatched(ctx context.Context, order *models.Order, item models.LineItem, reason string) {
	record := &models.UnmatchedLineItem{
		OrderID:   order.OrderID,
		OrderName: order.OrderName,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		SKU:       item.SKU,
		Quantity:  item.Quantity,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.storage.CreateUnmatched(ctx, record); err != nil {
		// Последний рубеж: позиция теряется для ручного разбора,
		// поэтому хотя бы полный след в логе
		s.logger.ErrorWithContext(ctx, "Не удалось сохранить неразобранную позицию",
			interfaces.LogField{Key: "order_id", Value: order.OrderID},
			interfaces.LogField{Key: "product_id", Value: item.ProductID},
			interfaces.LogField{Key: "reason", Value: reason},
			interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}

	unmatchedRecorded.WithLabelValues(reason).Inc()
	s.publishEvent(ctx, models.TopicLineItemUnmatched, order, item, "", reason)
}

// publishEvent публикует событие об исходе позиции. Сбой публикации не
// влияет на обработку заказа.
func (s *PipelineService) publishEvent(ctx context.Context, topic string, order *models.Order, item models.LineItem, fileName, reason string) {
	event := models.LineItemEvent{
		OrderID:    order.OrderID,
		OrderName:  order.OrderName,
		ProductID:  item.ProductID,
		VariantID:  item.VariantID,
		FileName:   fileName,
		Quantity:   item.Quantity,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.messaging.PublishWithKey(ctx, topic, strconv.FormatInt(order.OrderID, 10), data); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось опубликовать событие",
			interfaces.LogField{Key: "topic", Value: topic},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
