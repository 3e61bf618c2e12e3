package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/go-chi/render"
)

// FileHandler обработчик запросов подбора и проверки файлов
type FileHandler struct {
	suggest *services.SuggestService
	logger  interfaces.LoggerPort
}

// NewFileHandler создает новый обработчик файлов
func NewFileHandler(suggest *services.SuggestService, logger interfaces.LoggerPort) *FileHandler {
	return &FileHandler{
		suggest: suggest,
		logger:  logger,
	}
}

// SuggestFiles обрабатывает запрос на подбор файлов по свободному тексту
func (h *FileHandler) SuggestFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Поисковый запрос не указан",
		})
		return
	}

	candidates, err := h.suggest.Suggest(r.Context(), query)
	if err != nil {
		// Запрос из одних разделителей нормализуется в пустую строку —
		// это ошибка клиента, а не каталога
		if errors.Is(err, utils.ErrEmptyQuery) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "validation_error",
				Code:    http.StatusBadRequest,
				Message: "Поисковый запрос не содержит значимых символов",
			})
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка подбора файлов",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "query", Value: query})
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, errorResponse{
			Error:   "upstream_error",
			Code:    http.StatusBadGateway,
			Message: "Каталог файлов недоступен",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    candidates,
		Meta: map[string]interface{}{
			"query": query,
			"count": len(candidates),
		},
	})
}

type validateFilesRequest struct {
	FileNames []string `json:"file_names"`
}

// ValidateFiles обрабатывает запрос на проверку списка имен файлов
func (h *FileHandler) ValidateFiles(w http.ResponseWriter, r *http.Request) {
	var req validateFilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	if len(req.FileNames) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "validation_error",
			Code:    http.StatusBadRequest,
			Message: "Список имен файлов не может быть пустым",
		})
		return
	}

	checks := h.suggest.ValidateFiles(r.Context(), req.FileNames)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    checks,
	})
}
