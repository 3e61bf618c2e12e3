package security

import (
	"crypto/subtle"
	"errors"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthServiceInterface контракт аутентификации оператора
type AuthServiceInterface interface {
	Authenticate(username, password string) error
}

// StaticAuthService проверка по паре логин/пароль из конфигурации.
// Операторский интерфейс рассчитан на одного-двух пользователей,
// пользовательской базы у сервиса нет.
type StaticAuthService struct {
	username string
	password string
}

func NewStaticAuthService(username, password string) *StaticAuthService {
	return &StaticAuthService{username: username, password: password}
}

func (s *StaticAuthService) Authenticate(username, password string) error {
	if s.password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
