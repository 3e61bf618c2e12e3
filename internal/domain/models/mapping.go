package models

import (
	"time"

	"github.com/avbykov/printbridge/internal/matching"
)

// Mapping связывает товар/вариант магазина с файлами внешней очереди печати.
// На пару (ProductID, VariantID) существует не более одной записи;
// запись с VariantID == nil действует как фолбэк на уровне товара.
type Mapping struct {
	ID             string    `json:"id"`
	ProductID      int64     `json:"product_id"`
	VariantID      *int64    `json:"variant_id,omitempty"`
	FileNames      []string  `json:"file_names"`
	LegacyFileName string    `json:"legacy_file_name,omitempty"`
	SkipQueue      bool      `json:"skip_queue"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectiveFiles объединяет структурированный список файлов с устаревшим
// одиночным полем и убирает дубликаты по нормализованной форме имени.
// Сохраняется первое вхождение в исходном (ненормализованном) написании.
func (m *Mapping) EffectiveFiles() []string {
	merged := make([]string, 0, len(m.FileNames)+1)
	merged = append(merged, m.FileNames...)
	if m.LegacyFileName != "" {
		merged = append(merged, m.LegacyFileName)
	}

	seen := make(map[string]struct{}, len(merged))
	files := make([]string, 0, len(merged))
	for _, name := range merged {
		key := matching.Normalize(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		files = append(files, name)
	}
	return files
}
