package services

import (
	"context"
	"testing"
	"time"

	"github.com/avbykov/printbridge/internal/adapters/logger"
	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRoundTrip(t *testing.T) {
	st := newFakeStorage()
	groups := printqueue.NewGroupCache(newFakeCatalog(), st, logger.NewNop(), printqueue.SystemClock(), time.Minute, "Main")
	s := NewSettingsService(st, groups, logger.NewNop())

	_, err := s.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, utils.ErrSettingNotFound)

	require.NoError(t, s.Set(context.Background(), "some_setting", "value"))

	value, err := s.Get(context.Background(), "some_setting")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	require.NoError(t, s.Delete(context.Background(), "some_setting"))

	_, err = s.Get(context.Background(), "some_setting")
	assert.ErrorIs(t, err, utils.ErrSettingNotFound)
}

func TestSettingsDeleteMissing(t *testing.T) {
	st := newFakeStorage()
	groups := printqueue.NewGroupCache(newFakeCatalog(), st, logger.NewNop(), printqueue.SystemClock(), time.Minute, "Main")
	s := NewSettingsService(st, groups, logger.NewNop())

	// Удаление неизвестной настройки не проходит молча
	err := s.Delete(context.Background(), "never_set")
	assert.ErrorIs(t, err, utils.ErrSettingNotFound)
}

func TestSetGroupOverrideInvalidatesCache(t *testing.T) {
	st := newFakeStorage()
	catalog := newFakeCatalog()
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}
	groups := printqueue.NewGroupCache(catalog, st, logger.NewNop(), printqueue.SystemClock(), time.Hour, "Main")
	s := NewSettingsService(st, groups, logger.NewNop())

	id, err := groups.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	// Без сброса кэша переопределение вступило бы в силу только через TTL
	require.NoError(t, s.Set(context.Background(), printqueue.SettingGroupOverride, "17"))

	id, err = groups.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}
