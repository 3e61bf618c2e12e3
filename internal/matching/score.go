package matching

import (
	"strings"
	"unicode/utf8"
)

// Веса фаззи-оценки. Подобраны эмпирически и зафиксированы: изменение
// весов меняет порядок подсказок, на который завязаны операторы.
const (
	scoreExact          = 100
	scoreWholeToken     = 8
	scoreSubstringToken = 4
	scoreCompacted      = 10
	scoreFullQuery      = 6

	// компактная форма запроса участвует в бонусе только если она длиннее
	minCompactedLen = 3
)

// Score оценивает, насколько имя кандидата соответствует запросу.
// query должен быть уже нормализован (Normalize), candidate — сырое имя.
// Точное совпадение нормализованных форм дает 100 и не суммируется с
// остальными бонусами; из-за этого экзотический частичный кандидат может
// набрать больше, чем иначе отформатированный дубликат точного — это
// зафиксированное поведение, а не ошибка.
func Score(query, candidate string) int {
	normCandidate := Normalize(candidate)
	if normCandidate == "" {
		return 0
	}
	if normCandidate == query {
		return scoreExact
	}

	candidateTokens := strings.Fields(normCandidate)
	tokenSet := make(map[string]struct{}, len(candidateTokens))
	for _, t := range candidateTokens {
		tokenSet[t] = struct{}{}
	}

	score := 0
	for _, token := range strings.Fields(query) {
		// длины считаем в рунах, иначе кириллица проходит порог вдвое раньше
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		if _, ok := tokenSet[token]; ok {
			score += scoreWholeToken
		} else if strings.Contains(normCandidate, token) {
			score += scoreSubstringToken
		}
	}

	compactQuery := strings.ReplaceAll(query, " ", "")
	compactCandidate := strings.ReplaceAll(normCandidate, " ", "")
	if utf8.RuneCountInString(compactQuery) > minCompactedLen && strings.Contains(compactCandidate, compactQuery) {
		score += scoreCompacted
	}

	if strings.Contains(normCandidate, query) {
		score += scoreFullQuery
	}

	return score
}
