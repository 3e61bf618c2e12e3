package services

import (
	"context"

	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/interfaces"
)

// SettingsService именованные настройки сервиса.
// Запись настройки группы очереди немедленно сбрасывает кэш группы:
// иначе до целого TTL оператор видел бы устаревшее направление.
type SettingsService struct {
	storage storage.MappingStorageInterface
	groups  *printqueue.GroupCache
	logger  interfaces.LoggerPort
}

func NewSettingsService(st storage.MappingStorageInterface, groups *printqueue.GroupCache, log interfaces.LoggerPort) *SettingsService {
	return &SettingsService{storage: st, groups: groups, logger: log}
}

// Get читает настройку
func (s *SettingsService) Get(ctx context.Context, name string) (string, error) {
	return s.storage.GetSetting(ctx, name)
}

// Set сохраняет настройку
func (s *SettingsService) Set(ctx context.Context, name, value string) error {
	if err := s.storage.SetSetting(ctx, name, value); err != nil {
		return err
	}
	if name == printqueue.SettingGroupOverride {
		s.groups.Invalidate()
		s.logger.InfoWithContext(ctx, "Кэш группы очереди сброшен после изменения настройки")
	}
	return nil
}

// Delete удаляет настройку
func (s *SettingsService) Delete(ctx context.Context, name string) error {
	if err := s.storage.DeleteSetting(ctx, name); err != nil {
		return err
	}
	if name == printqueue.SettingGroupOverride {
		s.groups.Invalidate()
		s.logger.InfoWithContext(ctx, "Кэш группы очереди сброшен после удаления настройки")
	}
	return nil
}
