package services

import (
	"context"
	"errors"
	"testing"

	"github.com/avbykov/printbridge/internal/adapters/logger"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestMappingResolverVariantPrecedence(t *testing.T) {
	st := newFakeStorage()
	st.putMapping(&models.Mapping{
		ProductID: 10,
		FileNames: []string{"Product-Level.gcode"},
	})
	st.putMapping(&models.Mapping{
		ProductID: 10,
		VariantID: int64Ptr(7),
		FileNames: []string{"Variant-Level.gcode"},
	})

	r := NewMappingResolver(st, nil, logger.NewNop(), 0)

	// Запись варианта важнее записи уровня товара
	m, err := r.Resolve(context.Background(), 10, int64Ptr(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"Variant-Level.gcode"}, m.FileNames)

	// Для неизвестного варианта срабатывает фолбэк уровня товара
	m, err = r.Resolve(context.Background(), 10, int64Ptr(99))
	require.NoError(t, err)
	assert.Equal(t, []string{"Product-Level.gcode"}, m.FileNames)
}

func TestMappingResolverNotFound(t *testing.T) {
	r := NewMappingResolver(newFakeStorage(), nil, logger.NewNop(), 0)

	_, err := r.Resolve(context.Background(), 42, nil)
	assert.ErrorIs(t, err, utils.ErrMappingNotFound)
}

func TestFileResolverExactName(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.results["Widget.gcode"] = []models.FileCandidate{
		{ID: 3, Name: "Widget", FullName: "Widget.gcode"},
	}

	r := NewFileResolver(catalog, logger.NewNop())

	id, err := r.ResolveFileID(context.Background(), "Widget.gcode")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, []string{"Widget.gcode"}, catalog.calls())
}

func TestFileResolverFallsBackToBaseName(t *testing.T) {
	// Поиск по буквальному имени пуст, файл находится по имени без
	// расширения; сравнение идет по нормализованным формам
	catalog := newFakeCatalog()
	catalog.results["Part-01"] = []models.FileCandidate{
		{ID: 11, Name: "Part-01", FullName: "Part-01.gcode"},
	}

	r := NewFileResolver(catalog, logger.NewNop())

	id, err := r.ResolveFileID(context.Background(), "Part-01.gcode")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, []string{"Part-01.gcode", "Part-01"}, catalog.calls())
}

func TestFileResolverSkipsLooseCandidates(t *testing.T) {
	// Кандидаты с несовпадающим нормализованным именем не принимаются,
	// даже если поиск их вернул
	catalog := newFakeCatalog()
	catalog.results["Widget.gcode"] = []models.FileCandidate{
		{ID: 5, Name: "Widget-v2", FullName: "Widget-v2.gcode"},
	}

	r := NewFileResolver(catalog, logger.NewNop())

	_, err := r.ResolveFileID(context.Background(), "Widget.gcode")
	assert.ErrorIs(t, err, utils.ErrFileNotFound)
}

func TestFileResolverExhaustsAllVariants(t *testing.T) {
	catalog := newFakeCatalog()

	r := NewFileResolver(catalog, logger.NewNop())

	_, err := r.ResolveFileID(context.Background(), "Part-01.gcode")
	assert.ErrorIs(t, err, utils.ErrFileNotFound)

	// буквальное имя, база без расширения, токены базы длиннее двух символов
	assert.Equal(t, []string{"Part-01.gcode", "Part-01", "part"}, catalog.calls())
}

func TestFileResolverTokenLengthInRunes(t *testing.T) {
	// Порог длины токена считается в символах: двухбуквенный "ня" занимает
	// четыре байта, но отдельным вариантом поиска не становится
	catalog := newFakeCatalog()

	r := NewFileResolver(catalog, logger.NewNop())

	_, err := r.ResolveFileID(context.Background(), "Няша-ня.gcode")
	assert.ErrorIs(t, err, utils.ErrFileNotFound)
	assert.Equal(t, []string{"Няша-ня.gcode", "Няша-ня", "няша"}, catalog.calls())
}

func TestFileResolverTransportErrorAborts(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchErr = errors.New("upstream down")

	r := NewFileResolver(catalog, logger.NewNop())

	_, err := r.ResolveFileID(context.Background(), "Part-01.gcode")
	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrFileNotFound)

	// Перебор вариантов прерывается на первой ошибке транспорта
	assert.Equal(t, []string{"Part-01.gcode"}, catalog.calls())
}

func TestFileResolverEmptyName(t *testing.T) {
	r := NewFileResolver(newFakeCatalog(), logger.NewNop())

	_, err := r.ResolveFileID(context.Background(), "   ")
	assert.ErrorIs(t, err, utils.ErrEmptyFileName)
}
