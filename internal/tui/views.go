package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/explorador/internal/tui/components"
	"github.com/mmcdole/explorador/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Cargando…"
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail.View())
	view := lipgloss.JoinVertical(lipgloss.Left, columns, m.renderFooter())

	switch {
	case m.noteForm.IsVisible():
		return m.overlay(m.noteForm.View())
	case m.input.IsVisible():
		return m.overlay(m.input.View())
	case m.showHelp:
		return m.overlay(m.renderHelp())
	}
	return view
}

// overlay centers a modal on the screen
func (m Model) overlay(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderHelp() string {
	m.help.ShowAll = true
	m.help.Width = m.Width - 8
	title := styles.ModalTitleStyle.Render("Atajos de teclado")
	return styles.ModalStyle.Render(title + "\n\n" + m.help.View(Keys))
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		style := styles.SuccessStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		return style.Render(styles.Truncate(m.StatusMsg, m.Width))
	}

	m.help.Width = m.Width
	hint := m.help.View(Keys)
	if m.pane == PaneDetail {
		hint = m.detailHint()
	}
	return hint
}

// detailHint lists the actions available in the focused detail section
func (m Model) detailHint() string {
	var parts []string
	add := func(k, desc string) {
		parts = append(parts, styles.HelpKeyStyle.Render(k)+" "+styles.HelpDescStyle.Render(desc))
	}
	switch m.detail.Section() {
	case components.SectionCities:
		add("a", "fijar municipio")
		add("n", "nueva nota")
	case components.SectionNotes:
		add("n", "nueva")
		add("e", "editar")
		add("x", "eliminar")
	case components.SectionFavorites:
		add("n", "agregar")
		add("e", "renombrar")
		add("x", "quitar")
	}
	add("tab", "siguiente")
	add("esc", "volver")
	return styles.Truncate(strings.Join(parts, styles.DimStyle.Render(" • ")), m.Width)
}

// updateLayout sizes the two columns from the terminal size
func (m *Model) updateLayout() {
	height := m.Height - ChromeHeight
	if height < 3 {
		height = 3
	}

	listWidth := m.Width * ListColumnPercent / 100
	if listWidth < MinColumnWidth {
		listWidth = MinColumnWidth
	}
	detailWidth := m.Width - listWidth
	if detailWidth < MinColumnWidth {
		detailWidth = MinColumnWidth
	}

	m.list.SetSize(listWidth, height)
	m.detail.SetSize(detailWidth, height)
}
