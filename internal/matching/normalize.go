package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks раскладывает символы с диакритикой на базовую букву и
// комбинируемые знаки и удаляет последние ("Café" -> "Cafe")
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize приводит произвольный текст к канонической форме для сравнения
// имен файлов: убирает диакритику, переводит в нижний регистр, схлопывает
// каждую последовательность не-буквенно-цифровых символов в один пробел и
// обрезает пробелы по краям. Функция чистая и идемпотентная.
func Normalize(text string) string {
	decomposed, _, err := transform.String(stripMarks, text)
	if err != nil {
		// transform.String ошибается только на некорректном UTF-8,
		// в этом случае работаем с исходной строкой как есть
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))

	lastSpace := false
	for _, r := range strings.ToLower(decomposed) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// Tokens возвращает токены нормализованной формы текста
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// StripExtension отрезает расширение имени файла ("Part-01.gcode" -> "Part-01").
// Имена, начинающиеся с точки, остаются без изменений.
func StripExtension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx <= 0 {
		return fileName
	}
	return fileName[:idx]
}
