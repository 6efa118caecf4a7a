package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/tui/styles"
)

// Section is a focusable list inside the detail panel
type Section int

const (
	SectionNone Section = iota
	SectionCities
	SectionNotes
	SectionFavorites
)

func (s Section) String() string {
	switch s {
	case SectionCities:
		return "Municipios"
	case SectionNotes:
		return "Notas"
	case SectionFavorites:
		return "Municipios favoritos"
	default:
		return ""
	}
}

var printer = message.NewPrinter(language.MustParse("es-CO"))

// FormatPopulation formats an inhabitant count with locale grouping
func FormatPopulation(n int64) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatSurface formats an area in km² with up to three decimals
func FormatSurface(km2 float64) string {
	return printer.Sprint(number.Decimal(km2, number.MaxFractionDigits(3))) + " km²"
}

// DetailPanel shows one department with its cities, notes and pinned municipalities
type DetailPanel struct {
	detail    *browse.Detail
	favorite  bool
	notes     []domain.Note
	favorites []domain.MunicipalityFavorite

	section Section
	cursors map[Section]int

	loading bool
	spinner spinner.Model
	errMsg  string

	width   int
	height  int
	focused bool
}

// NewDetailPanel creates an empty detail panel
func NewDetailPanel() DetailPanel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle
	return DetailPanel{
		cursors: make(map[Section]int),
		spinner: sp,
	}
}

// SetLoading clears the panel and shows a spinner
func (p *DetailPanel) SetLoading() tea.Cmd {
	p.loading = true
	p.errMsg = ""
	p.detail = nil
	p.cursors = make(map[Section]int)
	return p.spinner.Tick
}

// SetError replaces the panel content with a failure message
func (p *DetailPanel) SetError(msg string) {
	p.loading = false
	p.detail = nil
	p.errMsg = msg
}

// SetDetail shows a loaded department
func (p *DetailPanel) SetDetail(d *browse.Detail) {
	p.loading = false
	p.errMsg = ""
	p.detail = d
}

// SetPersonal refreshes the user data shown for the department
func (p *DetailPanel) SetPersonal(favorite bool, notes []domain.Note, favs []domain.MunicipalityFavorite) {
	p.favorite = favorite
	p.notes = notes
	p.favorites = favs
	p.clampCursors()
}

// Detail returns the shown department, if any
func (p DetailPanel) Detail() *browse.Detail { return p.detail }

func (p *DetailPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Focus selects a section; SectionNone blurs the panel
func (p *DetailPanel) Focus(s Section) {
	p.section = s
	p.focused = s != SectionNone
}

// Section returns the focused section
func (p DetailPanel) Section() Section { return p.section }

// NextSection cycles cities, notes, favorites; it returns SectionNone after the last
func (p DetailPanel) NextSection() Section {
	switch p.section {
	case SectionNone:
		return SectionCities
	case SectionCities:
		return SectionNotes
	case SectionNotes:
		return SectionFavorites
	default:
		return SectionNone
	}
}

// SelectedCity returns the city under the cursor in the cities section
func (p DetailPanel) SelectedCity() *domain.City {
	if p.detail == nil {
		return nil
	}
	i := p.cursors[SectionCities]
	if i < 0 || i >= len(p.detail.Cities) {
		return nil
	}
	c := p.detail.Cities[i]
	return &c
}

// SelectedNote returns the note under the cursor in the notes section
func (p DetailPanel) SelectedNote() *domain.Note {
	i := p.cursors[SectionNotes]
	if i < 0 || i >= len(p.notes) {
		return nil
	}
	n := p.notes[i]
	return &n
}

// SelectedFavorite returns the pinned municipality under the cursor
func (p DetailPanel) SelectedFavorite() *domain.MunicipalityFavorite {
	i := p.cursors[SectionFavorites]
	if i < 0 || i >= len(p.favorites) {
		return nil
	}
	f := p.favorites[i]
	return &f
}

func (p DetailPanel) sectionLen(s Section) int {
	switch s {
	case SectionCities:
		if p.detail == nil {
			return 0
		}
		return len(p.detail.Cities)
	case SectionNotes:
		return len(p.notes)
	case SectionFavorites:
		return len(p.favorites)
	}
	return 0
}

func (p *DetailPanel) clampCursors() {
	for s, i := range p.cursors {
		n := p.sectionLen(s)
		if i >= n {
			p.cursors[s] = max(n-1, 0)
		}
	}
}

// Update moves the cursor of the focused section
func (p DetailPanel) Update(msg tea.Msg) (DetailPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		n := p.sectionLen(p.section)
		i := p.cursors[p.section]
		switch msg.String() {
		case "j", "down":
			if i < n-1 {
				i++
			}
		case "k", "up":
			if i > 0 {
				i--
			}
		case "g", "home":
			i = 0
		case "G", "end":
			i = max(n-1, 0)
		}
		p.cursors[p.section] = i
	}
	return p, nil
}

func (p DetailPanel) View() string {
	style := styles.InactiveBorder
	if p.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	contentWidth := max(p.width-frameW-1, 10)
	visible := max(p.height-frameH, 1)

	lines, row := p.renderLines(contentWidth)

	// Keep the focused row on screen
	offset := 0
	if row >= visible {
		offset = row - visible + 1
	}
	offset = min(offset, max(len(lines)-visible, 0))
	end := min(offset+visible, len(lines))

	return style.
		Width(max(p.width-frameW, 0)).
		Height(max(p.height-frameH, 0)).
		Render(strings.Join(lines[offset:end], "\n"))
}

// renderLines returns the panel lines and the index of the focused row, or -1
func (p DetailPanel) renderLines(width int) ([]string, int) {
	title := styles.AccentStyle.Render("Detalle")
	switch {
	case p.loading:
		return []string{title, "", p.spinner.View() + styles.DimStyle.Render(" Cargando…"), styles.DimStyle.Render("Buscando información e imagen.")}, -1
	case p.errMsg != "":
		out := []string{title, ""}
		for _, l := range styles.Wrap("No se pudo cargar el detalle. "+p.errMsg, width) {
			out = append(out, styles.ErrorStyle.Render(l))
		}
		return out, -1
	case p.detail == nil:
		return []string{title, "", styles.DimStyle.Render("Selecciona un departamento y pulsa enter.")}, -1
	}

	dep := p.detail.Department
	lines := []string{styles.TitleStyle.Render(styles.Truncate(dep.Name, width))}
	for _, l := range styles.Wrap(dep.DisplayDescription(), width) {
		lines = append(lines, styles.SubtitleStyle.Render(l))
	}
	lines = append(lines, "", p.renderPills(dep))

	fav := styles.NotFavoriteChar + " Agregar a favoritos"
	if p.favorite {
		fav = styles.FavoriteChar + " Quitar de favoritos"
	}
	lines = append(lines,
		styles.DimStyle.Render("Imagen: ")+styles.Truncate(p.detail.ImageURL, max(width-8, 5)),
		styles.AccentStyle.Render(fav),
		"",
	)

	focusRow := -1
	appendSection := func(sec Section, heading string, n int, label func(int) string) {
		rows, row := p.renderSection(sec, heading, width, n, label)
		if row >= 0 {
			focusRow = len(lines) + row
		}
		lines = append(lines, rows...)
	}

	appendSection(SectionCities, fmt.Sprintf("Municipios (%d)", len(p.detail.Cities)), len(p.detail.Cities), func(i int) string {
		return p.detail.Cities[i].Name
	})
	lines = append(lines, "")
	appendSection(SectionNotes, fmt.Sprintf("Notas (%d)", len(p.notes)), len(p.notes), func(i int) string {
		n := p.notes[i]
		return fmt.Sprintf("%s · %s · %s", n.Title, n.Text, n.Date.Local().Format("02/01/2006 15:04"))
	})
	lines = append(lines, "")
	appendSection(SectionFavorites, fmt.Sprintf("Municipios favoritos (%d)", len(p.favorites)), len(p.favorites), func(i int) string {
		return p.favorites[i].Name
	})
	return lines, focusRow
}

func (p DetailPanel) renderPills(dep domain.Department) string {
	pills := []string{styles.PillStyle.Render(fmt.Sprintf("ID: %d", dep.ID))}
	if dep.CityCapital != "" {
		pills = append(pills, styles.PillStyle.Render("Capital: "+dep.CityCapital))
	}
	if dep.Population > 0 {
		pills = append(pills, styles.PillStyle.Render("Población: "+FormatPopulation(dep.Population)))
	}
	if dep.Surface > 0 {
		pills = append(pills, styles.PillStyle.Render("Área: "+FormatSurface(dep.Surface)))
	}
	return strings.Join(pills, " ")
}

func (p DetailPanel) renderSection(s Section, heading string, width, n int, label func(int) string) ([]string, int) {
	lines := []string{styles.SectionStyle.Render(heading)}
	focused := p.focused && p.section == s
	if n == 0 {
		row := -1
		if focused {
			row = 0
		}
		return append(lines, styles.DimStyle.Render("  (vacío)")), row
	}
	row := -1
	for i := 0; i < n; i++ {
		text := styles.Truncate(label(i), max(width-2, 5))
		if focused && p.cursors[s] == i {
			row = len(lines)
			lines = append(lines, styles.SelectedItemStyle.Render(text))
			continue
		}
		lines = append(lines, styles.NormalItemStyle.Render(text))
	}
	return lines, row
}
