package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/go-chi/render"
)

// OrderHandler обработчик вебхуков о заказах
type OrderHandler struct {
	pipeline *services.PipelineService
	logger   interfaces.LoggerPort
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(pipeline *services.PipelineService, logger interfaces.LoggerPort) *OrderHandler {
	return &OrderHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// HandleOrderWebhook обрабатывает вебхук о создании заказа
func (h *OrderHandler) HandleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	h.logger.InfoWithContext(r.Context(), "Получен вебхук о заказе",
		interfaces.LogField{Key: "order_id", Value: order.OrderID},
		interfaces.LogField{Key: "line_items", Value: len(order.LineItems)},
	)

	// Обработка никогда не валит вебхук: все сбои фиксируются
	// как нераспределенные позиции и уходят в очередь оператора
	if err := h.pipeline.ProcessOrder(r.Context(), &order); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка обработки заказа",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
	})
}
