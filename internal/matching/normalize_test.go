package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "нижний регистр",
			input:    "WIDGET",
			expected: "widget",
		},
		{
			name:     "диакритика",
			input:    "Café-Brûlée.gcode",
			expected: "cafe brulee gcode",
		},
		{
			name:     "схлопывание разделителей",
			input:    "Part_01--final   (v2).stl",
			expected: "part 01 final v2 stl",
		},
		{
			name:     "пробелы по краям",
			input:    "  widget  ",
			expected: "widget",
		},
		{
			name:     "пустая строка",
			input:    "",
			expected: "",
		},
		{
			name:     "только разделители",
			input:    "--__--",
			expected: "",
		},
		{
			name:     "кириллица",
			input:    "Деталь-01.gcode",
			expected: "деталь 01 gcode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Café-Brûlée.gcode",
		"Part_01--final (v2).stl",
		"WIDGET",
		"уже нормализованный текст",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "повторная нормализация должна быть без эффекта: %q", input)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"part", "01", "gcode"}, Tokens("Part-01.gcode"))
	assert.Empty(t, Tokens("---"))
}

func TestStripExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Part-01.gcode", "Part-01"},
		{"archive.tar.gz", "archive.tar"},
		{"noextension", "noextension"},
		{".hidden", ".hidden"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripExtension(tt.input), "input: %q", tt.input)
	}
}
