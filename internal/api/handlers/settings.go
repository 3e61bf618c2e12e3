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

// SettingsHandler обработчик именованных настроек
type SettingsHandler struct {
	settings *services.SettingsService
	logger   interfaces.LoggerPort
}

// NewSettingsHandler создает новый обработчик настроек
func NewSettingsHandler(settings *services.SettingsService, logger interfaces.LoggerPort) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// GetSetting обрабатывает запрос на получение значения настройки
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Имя настройки не указано",
		})
		return
	}

	value, err := h.settings.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, utils.ErrSettingNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Настройка не найдена",
			})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка получения настройки",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "name", Value: name})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения настройки",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"name":  name,
			"value": value,
		},
	})
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// SetSetting обрабатывает запрос на установку значения настройки
func (h *SettingsHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Имя настройки не указано",
		})
		return
	}

	var req setSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	if err := h.settings.Set(r.Context(), name, req.Value); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения настройки",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "name", Value: name})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка сохранения настройки",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"name":  name,
			"value": req.Value,
		},
	})
}

// DeleteSetting обрабатывает запрос на удаление настройки
func (h *SettingsHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Имя настройки не указано",
		})
		return
	}

	if err := h.settings.Delete(r.Context(), name); err != nil {
		if errors.Is(err, utils.ErrSettingNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Настройка не найдена",
			})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка удаления настройки",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "name", Value: name})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка удаления настройки",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"name":    name,
			"deleted": true,
		},
	})
}
