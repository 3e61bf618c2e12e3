package logger

import (
	"github.com/avbykov/printbridge/internal/interfaces"
	"go.uber.org/zap"
)

// NewNop возвращает логгер, отбрасывающий все сообщения. Для тестов.
func NewNop() interfaces.LoggerPort {
	return &ZapLogger{logger: zap.NewNop().Sugar()}
}
