package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "Meta", 10, "Meta"},
		{"exact", "Meta", 4, "Meta"},
		{"cut", "Cundinamarca", 6, "Cundi…"},
		{"accents", "Atlántico", 5, "Atlá…"},
		{"zero", "Meta", 0, ""},
		{"one", "Meta", 1, "M"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestWrap(t *testing.T) {
	lines := Wrap("Departamento ubicado en la región andina", 16)
	assert.Equal(t, []string{"Departamento", "ubicado en la", "región andina"}, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 16)
	}

	assert.Equal(t, []string{"uno", "dos"}, Wrap("uno\ndos", 20))
	assert.Nil(t, Wrap("x", 0))
}

func TestRenderListRowPadsToWidth(t *testing.T) {
	row := RenderListRow([]RowPart{{Text: "★ "}, {Text: "Meta"}}, false, 20)
	assert.Equal(t, 20, lipgloss.Width(row))
}
