package models

// FileCandidate результат поиска по каталогу внешней очереди печати.
// Не персистится: живет от поискового запроса до ответа.
type FileCandidate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension,omitempty"`
	FullName  string `json:"full_name"`
	Score     int    `json:"score"`
}

// QueueGroup группа (направление) во внешней очереди печати
type QueueGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
