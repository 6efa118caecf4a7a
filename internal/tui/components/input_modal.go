package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/explorador/internal/tui/styles"
)

// InputModal is a single-line text prompt used for municipality names
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.Placeholder = "Nombre del municipio…"
	ti.CharLimit = 80
	ti.Width = 30
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{input: ti}
}

// Show displays the modal with a title and an initial value
func (m *InputModal) Show(title, value string) tea.Cmd {
	m.visible = true
	m.title = title
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Value returns the current input value
func (m InputModal) Value() string {
	return m.input.Value()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 36
	bg := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)

	content := lipgloss.JoinVertical(lipgloss.Left,
		bg.Foreground(styles.White).Bold(true).Render(m.title),
		bg.Render(""),
		bg.Render(m.input.View()),
		bg.Render(""),
		bg.Foreground(styles.DimGray).Render("enter guardar · esc cancelar"),
	)
	return styles.ModalStyle.Render(content)
}
