package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreExactMatch(t *testing.T) {
	// Точное совпадение нормализованных форм дает ровно 100 без
	// суммирования с остальными бонусами
	assert.Equal(t, 100, Score("widget", "widget"))
	assert.Equal(t, 100, Score("part 01 gcode", "Part-01.gcode"))
	assert.Equal(t, 100, Score("cafe", "Café"))
}

func TestScoreEmptyCandidate(t *testing.T) {
	assert.Equal(t, 0, Score("widget", ""))
	assert.Equal(t, 0, Score("widget", "---"))
}

func TestScoreWholeToken(t *testing.T) {
	// "widget" как целый токен: +8, компактная форма входит в компактного
	// кандидата: +10, весь запрос входит подстрокой: +6
	assert.Equal(t, 24, Score("widget", "Widget.gcode"))
}

func TestScoreSubstringToken(t *testing.T) {
	// "wid" не целый токен, но подстрока: +4; компактная форма короче
	// порога, бонуса нет; весь запрос входит подстрокой: +6
	assert.Equal(t, 10, Score("wid", "Widget.gcode"))
}

func TestScoreShortTokensSkipped(t *testing.T) {
	// Токены из одного символа не участвуют в сравнении по токенам
	assert.Equal(t, 0, Score("a b", "xyz.gcode"))
}

func TestScoreMultiToken(t *testing.T) {
	// widget: +8, blue: +8, компактная форма "widgetblue" входит: +10,
	// весь запрос "widget blue" входит подстрокой: +6
	assert.Equal(t, 32, Score("widget blue", "Widget-Blue.gcode"))

	// Совпадает лишь один токен из двух
	assert.Equal(t, 8, Score("widget blue", "Widget-Red.gcode"))
}

func TestScoreThresholdsCountRunes(t *testing.T) {
	// Пороги длины считаются в рунах, а не в байтах: кириллический "пет"
	// занимает 6 байт, но это 3 символа, поэтому компактного бонуса нет.
	// Остаются подстрока токена (+4) и вхождение всего запроса (+6)
	assert.Equal(t, 10, Score("пет", "петля"))

	// Однобуквенный "я" не участвует в сравнении по токенам; остается
	// лишь вхождение всего запроса: +6
	assert.Equal(t, 6, Score("я", "яхта модель"))

	// Латиница той же длины оценивается так же
	assert.Equal(t, Score("pet", "petlya"), Score("пет", "петля"))
}

func TestScoreExactBeatsPartial(t *testing.T) {
	// Частичный кандидат не может обогнать точное совпадение
	exact := Score("part 01", "Part-01")
	partial := Score("part 01", "Part-01.gcode")
	assert.Equal(t, 100, exact)
	assert.Greater(t, exact, partial)
}
