package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/go-chi/render"
)

// MappingHandler обработчик запросов сопоставлений товаров и файлов
type MappingHandler struct {
	mappings *services.MappingService
	logger   interfaces.LoggerPort
}

// NewMappingHandler создает новый обработчик сопоставлений
func NewMappingHandler(mappings *services.MappingService, logger interfaces.LoggerPort) *MappingHandler {
	return &MappingHandler{
		mappings: mappings,
		logger:   logger,
	}
}

// ListMappings обрабатывает запрос на получение списка сопоставлений
func (h *MappingHandler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappings.List(r.Context())
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения списка сопоставлений",
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения списка сопоставлений",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    mappings,
		Meta: map[string]interface{}{
			"count": len(mappings),
		},
	})
}

// UpsertMapping обрабатывает запрос на создание или обновление сопоставления
func (h *MappingHandler) UpsertMapping(w http.ResponseWriter, r *http.Request) {
	var mapping models.Mapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	if err := h.mappings.Upsert(r.Context(), &mapping); err != nil {
		if errors.Is(err, utils.ErrInvalidProductId) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "validation_error",
				Code:    http.StatusBadRequest,
				Message: "ID товара не указан",
			})
			return
		}
		if errors.Is(err, utils.ErrEmptyFileName) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "validation_error",
				Code:    http.StatusBadRequest,
				Message: "Список файлов пуст: укажите файлы или флаг пропуска очереди",
			})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения сопоставления",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "product_id", Value: mapping.ProductID})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка сохранения сопоставления",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    mapping,
	})
}

// DeleteMapping обрабатывает запрос на удаление сопоставления
func (h *MappingHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	productIDStr := r.URL.Query().Get("product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный ID товара",
		})
		return
	}

	var variantID *int64
	if variantIDStr := r.URL.Query().Get("variant_id"); variantIDStr != "" {
		id, err := strconv.ParseInt(variantIDStr, 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "bad_request",
				Code:    http.StatusBadRequest,
				Message: "Некорректный ID варианта",
			})
			return
		}
		variantID = &id
	}

	if err := h.mappings.Delete(r.Context(), productID, variantID); err != nil {
		if errors.Is(err, utils.ErrMappingNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Сопоставление не найдено",
			})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка удаления сопоставления",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "product_id", Value: productID})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка удаления сопоставления",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"product_id": productID,
			"deleted":    true,
		},
	})
}
