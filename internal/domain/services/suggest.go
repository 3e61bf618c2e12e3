package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/domain/models"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/matching"
	"github.com/avbykov/printbridge/internal/utils"
)

// SuggestService подсказки файлов каталога по свободному тексту и
// проверка разрешимости имен без постановки в очередь
type SuggestService struct {
	catalog    printqueue.CatalogPort
	files      *FileResolver
	logger     interfaces.LoggerPort
	fanOut     int
	maxResults int
}

func NewSuggestService(catalog printqueue.CatalogPort, files *FileResolver, log interfaces.LoggerPort, fanOut, maxResults int) *SuggestService {
	if fanOut <= 0 {
		fanOut = 4
	}
	if maxResults <= 0 {
		maxResults = 8
	}
	return &SuggestService{
		catalog:    catalog,
		files:      files,
		logger:     log,
		fanOut:     fanOut,
		maxResults: maxResults,
	}
}

// Suggest возвращает ранжированный список кандидатов для свободного
// текстового запроса. Поиск веером: целиком запрос плюс отдельные токены,
// не больше fanOut параллельных вызовов. Результаты веток сливаются в
// порядке веток (не прихода ответов), поэтому порядок при равных оценках
// детерминирован; затем оценка, стабильная сортировка по убыванию и
// усечение до maxResults.
func (s *SuggestService) Suggest(ctx context.Context, freeText string) ([]models.FileCandidate, error) {
	query := matching.Normalize(freeText)
	if query == "" {
		return nil, utils.ErrEmptyQuery
	}

	queries := s.searchQueries(freeText, query)

	type branch struct {
		candidates []models.FileCandidate
		err        error
	}
	branches := make([]branch, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			candidates, err := s.catalog.Search(ctx, q)
			branches[i] = branch{candidates: candidates, err: err}
		}(i, q)
	}
	wg.Wait()

	var (
		merged  []models.FileCandidate
		seen    = make(map[int64]struct{})
		lastErr error
		failed  int
	)
	for i, b := range branches {
		if b.err != nil {
			// Частичный отказ терпим: остальные ветки еще могут дать подсказки
			failed++
			lastErr = b.err
			s.logger.WarnWithContext(ctx, "Ветка поиска подсказок завершилась ошибкой",
				interfaces.LogField{Key: "query", Value: queries[i]},
				interfaces.LogField{Key: "error", Value: b.err.Error()})
			continue
		}
		for _, c := range b.candidates {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	if failed == len(branches) && lastErr != nil {
		return nil, lastErr
	}

	for i := range merged {
		merged[i].Score = matching.Score(query, merged[i].FullName)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > s.maxResults {
		merged = merged[:s.maxResults]
	}
	return merged, nil
}

// searchQueries собирает список поисковых запросов: исходный текст,
// затем отличающиеся от него нормализованные токены
func (s *SuggestService) searchQueries(freeText, normalized string) []string {
	queries := make([]string, 0, s.fanOut)
	seen := make(map[string]struct{}, s.fanOut)

	add := func(q string) {
		if q == "" || len(queries) >= s.fanOut {
			return
		}
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	add(strings.TrimSpace(freeText))
	for _, token := range strings.Fields(normalized) {
		if utf8.RuneCountInString(token) > 1 {
			add(token)
		}
	}
	return queries
}

// FileCheck результат проверки разрешимости одного имени
type FileCheck struct {
	FileName   string `json:"file_name"`
	Resolvable bool   `json:"resolvable"`
	FileID     int64  `json:"file_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ValidateFiles проверяет, разрешимо ли каждое имя из списка, без
// постановки в очередь (режим сухого прогона для оператора)
func (s *SuggestService) ValidateFiles(ctx context.Context, fileNames []string) []FileCheck {
	checks := make([]FileCheck, 0, len(fileNames))
	for _, name := range fileNames {
		check := FileCheck{FileName: name}
		fileID, err := s.files.ResolveFileID(ctx, name)
		if err != nil {
			check.Error = err.Error()
			if errors.Is(err, utils.ErrFileNotFound) {
				check.Error = "file not found in catalog"
			}
		} else {
			check.Resolvable = true
			check.FileID = fileID
		}
		checks = append(checks, check)
	}
	return checks
}
