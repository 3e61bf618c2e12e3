package printqueue

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/utils"
)

// SettingGroupOverride имя настройки с явным переопределением ID группы
const SettingGroupOverride = "print_queue_group_id"

// NoGroup значение-заглушка "подходящей группы нет"; кэшируется, чтобы не
// опрашивать апстрим на каждый заказ при отсутствующей группе
const NoGroup int64 = 0

// Clock источник времени. Внедряется, чтобы в тестах управлять возрастом кэша.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock системные часы
func SystemClock() Clock { return realClock{} }

// SettingsReader доступ к именованным настройкам
type SettingsReader interface {
	GetSetting(ctx context.Context, name string) (string, error)
}

// GroupCache кэш идентификатора целевой группы очереди.
// Хранит единственную пару (groupID, fetchedAt); значение живет groupTTL и
// сбрасывается явно при смене настройки оператором. Гонки конкурентных
// обновлений безвредны: страдает только свежесть, не корректность.
type GroupCache struct {
	catalog   CatalogPort
	settings  SettingsReader
	logger    interfaces.LoggerPort
	clock     Clock
	ttl       time.Duration
	groupName string

	mu        sync.Mutex
	groupID   int64
	fetchedAt time.Time
}

// NewGroupCache создает кэш группы очереди
func NewGroupCache(catalog CatalogPort, settings SettingsReader, log interfaces.LoggerPort, clock Clock, ttl time.Duration, groupName string) *GroupCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &GroupCache{
		catalog:   catalog,
		settings:  settings,
		logger:    log,
		clock:     clock,
		ttl:       ttl,
		groupName: groupName,
	}
}

// GroupID возвращает идентификатор целевой группы очереди.
// Закэшированное значение младше TTL возвращается как есть. Иначе порядок
// разрешения: явная числовая настройка-переопределение; затем поиск группы
// по имени (без учета регистра) в списке из апстрима; затем NoGroup.
func (g *GroupCache) GroupID(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.fetchedAt.IsZero() && g.clock.Now().Sub(g.fetchedAt) < g.ttl {
		return g.groupID, nil
	}

	id, err := g.resolve(ctx)
	if err != nil {
		return 0, err
	}

	g.groupID = id
	g.fetchedAt = g.clock.Now()
	return id, nil
}

// resolve вычисляет актуальный идентификатор группы, вызывается под мьютексом
func (g *GroupCache) resolve(ctx context.Context) (int64, error) {
	override, err := g.settings.GetSetting(ctx, SettingGroupOverride)
	if err != nil && !errors.Is(err, utils.ErrSettingNotFound) {
		return 0, err
	}
	if err == nil {
		if id, parseErr := strconv.ParseInt(strings.TrimSpace(override), 10, 64); parseErr == nil {
			return id, nil
		}
		g.logger.WarnWithContext(ctx, "Нечисловое переопределение группы очереди, игнорируется",
			interfaces.LogField{Key: "value", Value: override})
	}

	groups, err := g.catalog.ListGroups(ctx)
	if err != nil {
		return 0, err
	}

	for _, group := range groups {
		if strings.EqualFold(group.Name, g.groupName) {
			return group.ID, nil
		}
	}

	g.logger.WarnWithContext(ctx, "Группа очереди не найдена по имени",
		interfaces.LogField{Key: "group_name", Value: g.groupName})
	return NoGroup, nil
}

// Invalidate сбрасывает кэш. Вызывается при изменении настройки группы,
// чтобы следующий запрос разрешил значение заново, а не дожидался TTL.
func (g *GroupCache) Invalidate() {
	g.mu.Lock()
	g.groupID = 0
	g.fetchedAt = time.Time{}
	g.mu.Unlock()
}
