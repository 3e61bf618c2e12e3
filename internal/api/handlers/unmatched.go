package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// UnmatchedHandler обработчик операторской очереди неразобранных позиций
type UnmatchedHandler struct {
	unmatched *services.UnmatchedService
	logger    interfaces.LoggerPort
}

// NewUnmatchedHandler создает новый обработчик неразобранных позиций
func NewUnmatchedHandler(unmatched *services.UnmatchedService, logger interfaces.LoggerPort) *UnmatchedHandler {
	return &UnmatchedHandler{
		unmatched: unmatched,
		logger:    logger,
	}
}

// ListUnmatched обрабатывает запрос на получение списка неразобранных позиций
func (h *UnmatchedHandler) ListUnmatched(w http.ResponseWriter, r *http.Request) {
	items, err := h.unmatched.List(r.Context())
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения неразобранных позиций",
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения неразобранных позиций",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    items,
		Meta: map[string]interface{}{
			"count": len(items),
		},
	})
}

type queueUnmatchedRequest struct {
	FileName       string `json:"file_name"`
	PersistMapping bool   `json:"persist_mapping"`
}

// QueueUnmatched обрабатывает ручную постановку позиции в очередь
func (h *UnmatchedHandler) QueueUnmatched(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "ID записи не указан",
		})
		return
	}

	var req queueUnmatchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	item, err := h.unmatched.ResolveManually(r.Context(), id, req.FileName, req.PersistMapping)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrEmptyFileName):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "validation_error",
				Code:    http.StatusBadRequest,
				Message: "Имя файла не указано",
			})
		case errors.Is(err, utils.ErrUnmatchedNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Запись не найдена",
			})
		case errors.Is(err, utils.ErrFileNotFound):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, errorResponse{
				Error:   "file_not_found",
				Code:    http.StatusUnprocessableEntity,
				Message: "Файл не найден в каталоге",
			})
		default:
			h.logger.ErrorWithContext(r.Context(), "Ошибка ручной постановки в очередь",
				interfaces.LogField{Key: "error", Value: err.Error()},
				interfaces.LogField{Key: "id", Value: id})
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errorResponse{
				Error:   "internal_error",
				Code:    http.StatusInternalServerError,
				Message: "Ошибка постановки в очередь",
			})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    item,
	})
}

// DismissUnmatched обрабатывает отклонение позиции без постановки в очередь
func (h *UnmatchedHandler) DismissUnmatched(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "ID записи не указан",
		})
		return
	}

	if err := h.unmatched.Dismiss(r.Context(), id); err != nil {
		if errors.Is(err, utils.ErrUnmatchedNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Запись не найдена",
			})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка отклонения позиции",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "id", Value: id})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка отклонения позиции",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"id":        id,
			"dismissed": true,
		},
	})
}
