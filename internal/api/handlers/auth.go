package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/security"
	"github.com/go-chi/render"
)

// AuthHandler обработчик аутентификации операторов
type AuthHandler struct {
	auth       *security.StaticAuthService
	jwtManager *security.JWTManager
	logger     interfaces.LoggerPort
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(auth *security.StaticAuthService, jwtManager *security.JWTManager, logger interfaces.LoggerPort) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login обрабатывает запрос на вход оператора
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректный формат данных",
		})
		return
	}

	if err := h.auth.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			h.logger.WarnWithContext(r.Context(), "Неудачная попытка входа",
				interfaces.LogField{Key: "username", Value: req.Username})
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, errorResponse{
				Error:   "unauthorized",
				Code:    http.StatusUnauthorized,
				Message: "Неверное имя пользователя или пароль",
			})
			return
		}

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка аутентификации",
		})
		return
	}

	token, err := h.jwtManager.Generate(req.Username)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка генерации токена",
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка генерации токена",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data: map[string]interface{}{
			"token": token,
		},
	})
}
