package components

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/tui/styles"
)

// NoteForm edits a note title and text. An empty EditingID means a new note.
type NoteForm struct {
	visible   bool
	editingID string
	field     int // 0 title, 1 text
	title     textinput.Model
	text      textarea.Model
}

// NewNoteForm creates a hidden note form
func NewNoteForm() NoteForm {
	ti := textinput.New()
	ti.Placeholder = "Título"
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	ta := textarea.New()
	ta.Placeholder = "Escribe tu nota…"
	ta.ShowLineNumbers = false
	ta.SetWidth(42)
	ta.SetHeight(5)
	ta.CharLimit = 2000

	return NoteForm{title: ti, text: ta}
}

// Show opens the form, prefilled when editing an existing note
func (f *NoteForm) Show(note *domain.Note) tea.Cmd {
	f.visible = true
	f.field = 0
	f.editingID = ""
	f.title.SetValue("")
	f.text.SetValue("")
	if note != nil {
		f.editingID = note.ID
		f.title.SetValue(note.Title)
		f.text.SetValue(note.Text)
	}
	f.text.Blur()
	return f.title.Focus()
}

// Hide dismisses the form
func (f *NoteForm) Hide() {
	f.visible = false
	f.title.Blur()
	f.text.Blur()
}

func (f NoteForm) IsVisible() bool { return f.visible }

// EditingID returns the id of the note being edited, empty for a new note
func (f NoteForm) EditingID() string { return f.editingID }

// Values returns the raw title and text
func (f NoteForm) Values() (title, text string) {
	return f.title.Value(), f.text.Value()
}

// Update handles input events, returns (form, cmd, submitted)
func (f NoteForm) Update(msg tea.Msg) (NoteForm, tea.Cmd, bool) {
	if !f.visible {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			return f, nil, true
		case "enter":
			if f.field == 0 {
				return f, nil, true
			}
		case "esc":
			f.Hide()
			return f, nil, false
		case "tab", "shift+tab":
			return f, f.switchField(), false
		}
	}

	var cmd tea.Cmd
	if f.field == 0 {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.text, cmd = f.text.Update(msg)
	}
	return f, cmd, false
}

func (f *NoteForm) switchField() tea.Cmd {
	if f.field == 0 {
		f.field = 1
		f.title.Blur()
		return f.text.Focus()
	}
	f.field = 0
	f.text.Blur()
	return f.title.Focus()
}

// View renders the form as a modal
func (f NoteForm) View() string {
	if !f.visible {
		return ""
	}
	heading := "Nueva nota"
	if f.editingID != "" {
		heading = "Editar nota"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(heading),
		styles.DimStyle.Render("Título"),
		f.title.View(),
		"",
		styles.DimStyle.Render("Texto"),
		f.text.View(),
		"",
		styles.DimStyle.Render("tab cambiar campo · ctrl+s guardar · esc cancelar"),
	)
	return styles.ModalStyle.Render(content)
}
