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

func newSuggestService(catalog *fakeCatalog) *SuggestService {
	log := logger.NewNop()
	return NewSuggestService(catalog, NewFileResolver(catalog, log), log, 4, 8)
}

func TestSuggestRanksByScore(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.results["widget blue"] = []models.FileCandidate{
		{ID: 1, Name: "Widget-Red", FullName: "Widget-Red.gcode"},
		{ID: 2, Name: "widget blue", FullName: "widget blue"},
		{ID: 3, Name: "Widget-Blue", FullName: "Widget-Blue.gcode"},
	}

	s := newSuggestService(catalog)

	candidates, err := s.Suggest(context.Background(), "widget blue")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Точное нормализованное совпадение впереди, затем по убыванию оценки
	assert.Equal(t, int64(2), candidates[0].ID)
	assert.Equal(t, 100, candidates[0].Score)
	assert.Equal(t, int64(3), candidates[1].ID)
	assert.Equal(t, int64(1), candidates[2].ID)
}

func TestSuggestMergesBranchesAndDeduplicates(t *testing.T) {
	// Один и тот же файл из разных веток попадает в выдачу один раз
	catalog := newFakeCatalog()
	catalog.results["widget blue"] = []models.FileCandidate{
		{ID: 1, FullName: "Widget-Blue.gcode"},
	}
	catalog.results["widget"] = []models.FileCandidate{
		{ID: 1, FullName: "Widget-Blue.gcode"},
		{ID: 2, FullName: "Widget-Red.gcode"},
	}

	s := newSuggestService(catalog)

	candidates, err := s.Suggest(context.Background(), "widget blue")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].ID)
	assert.Equal(t, int64(2), candidates[1].ID)
}

func TestSuggestStableOrderOnTies(t *testing.T) {
	// При равных оценках сохраняется порядок обнаружения
	catalog := newFakeCatalog()
	catalog.results["widget"] = []models.FileCandidate{
		{ID: 5, FullName: "Widget-A.gcode"},
		{ID: 6, FullName: "Widget-B.gcode"},
		{ID: 7, FullName: "Widget-C.gcode"},
	}

	s := newSuggestService(catalog)

	candidates, err := s.Suggest(context.Background(), "widget")
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, []int64{5, 6, 7}, []int64{candidates[0].ID, candidates[1].ID, candidates[2].ID})
}

func TestSuggestCapsResults(t *testing.T) {
	catalog := newFakeCatalog()
	for i := int64(1); i <= 12; i++ {
		catalog.results["widget"] = append(catalog.results["widget"], models.FileCandidate{
			ID:       i,
			FullName: "Widget.gcode",
		})
	}

	s := newSuggestService(catalog)

	candidates, err := s.Suggest(context.Background(), "widget")
	require.NoError(t, err)
	assert.Len(t, candidates, 8)
}

func TestSuggestAllBranchesFailed(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchErr = errors.New("upstream down")

	s := newSuggestService(catalog)

	_, err := s.Suggest(context.Background(), "widget")
	assert.Error(t, err)
}

func TestSuggestEmptyQuery(t *testing.T) {
	s := newSuggestService(newFakeCatalog())

	_, err := s.Suggest(context.Background(), " --- ")
	assert.ErrorIs(t, err, utils.ErrEmptyQuery)
}

func TestValidateFiles(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.results["Widget.gcode"] = []models.FileCandidate{
		{ID: 3, Name: "Widget", FullName: "Widget.gcode"},
	}

	s := newSuggestService(catalog)

	checks := s.ValidateFiles(context.Background(), []string{"Widget.gcode", "Missing.gcode"})
	require.Len(t, checks, 2)

	assert.True(t, checks[0].Resolvable)
	assert.Equal(t, int64(3), checks[0].FileID)
	assert.Empty(t, checks[0].Error)

	assert.False(t, checks[1].Resolvable)
	assert.Equal(t, "file not found in catalog", checks[1].Error)
}
