package printqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avbykov/printbridge/internal/adapters/logger"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeGroupCatalog struct {
	groups        []models.QueueGroup
	listCalls     int
	listGroupsErr error
}

func (f *fakeGroupCatalog) Search(ctx context.Context, query string) ([]models.FileCandidate, error) {
	return nil, nil
}

func (f *fakeGroupCatalog) ListGroups(ctx context.Context) ([]models.QueueGroup, error) {
	f.listCalls++
	if f.listGroupsErr != nil {
		return nil, f.listGroupsErr
	}
	return f.groups, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetSetting(ctx context.Context, name string) (string, error) {
	value, ok := f.values[name]
	if !ok {
		return "", utils.ErrSettingNotFound
	}
	return value, nil
}

func newGroupFixture(groupName string) (*GroupCache, *fakeGroupCatalog, *fakeSettings, *fakeClock) {
	catalog := &fakeGroupCatalog{}
	settings := &fakeSettings{values: make(map[string]string)}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewGroupCache(catalog, settings, logger.NewNop(), clock, 5*time.Minute, groupName)
	return cache, catalog, settings, clock
}

func TestGroupIDResolvesByName(t *testing.T) {
	cache, catalog, _, _ := newGroupFixture("Main")
	catalog.groups = []models.QueueGroup{
		{ID: 1, Name: "Backlog"},
		{ID: 2, Name: "MAIN"},
	}

	// Сопоставление имени без учета регистра
	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestGroupIDCachesWithinTTL(t *testing.T) {
	cache, catalog, _, clock := newGroupFixture("Main")
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}

	_, err := cache.GroupID(context.Background())
	require.NoError(t, err)

	clock.advance(4 * time.Minute)

	_, err = cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.listCalls, "внутри TTL апстрим не опрашивается")

	clock.advance(2 * time.Minute)

	_, err = cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.listCalls, "после истечения TTL значение разрешается заново")
}

func TestGroupIDNumericOverride(t *testing.T) {
	cache, catalog, settings, _ := newGroupFixture("Main")
	settings.values[SettingGroupOverride] = " 17 "

	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
	assert.Equal(t, 0, catalog.listCalls, "при числовом переопределении список групп не нужен")
}

func TestGroupIDIgnoresGarbageOverride(t *testing.T) {
	cache, catalog, settings, _ := newGroupFixture("Main")
	settings.values[SettingGroupOverride] = "not-a-number"
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}

	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestGroupIDUnknownNameCachesNoGroup(t *testing.T) {
	cache, catalog, _, _ := newGroupFixture("Missing")
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}

	// Отсутствие группы — тоже кэшируемый результат
	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoGroup, id)

	_, err = cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.listCalls)
}

func TestGroupIDUpstreamError(t *testing.T) {
	cache, catalog, _, _ := newGroupFixture("Main")
	catalog.listGroupsErr = errors.New("upstream down")

	_, err := cache.GroupID(context.Background())
	assert.Error(t, err)

	// Ошибка не кэшируется: следующий вызов пробует снова
	catalog.listGroupsErr = nil
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}

	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestInvalidateForcesRefresh(t *testing.T) {
	cache, catalog, settings, _ := newGroupFixture("Main")
	catalog.groups = []models.QueueGroup{{ID: 2, Name: "Main"}}

	id, err := cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	// Оператор задал переопределение: без Invalidate оно вступило бы в
	// силу только после TTL
	settings.values[SettingGroupOverride] = "17"
	cache.Invalidate()

	id, err = cache.GroupID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}
