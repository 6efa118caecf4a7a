package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/reveal"
	"github.com/mmcdole/explorador/internal/tui/styles"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// SlotStates reports the reveal state of a thumbnail slot
type SlotStates interface {
	State(id string) reveal.SlotState
}

// SlotID is the thumbnail slot identity for a department row
func SlotID(depID int) string {
	return fmt.Sprintf("dep-%d", depID)
}

// ParseSlotID returns the department id of a slot id
func ParseSlotID(id string) (int, bool) {
	var depID int
	if _, err := fmt.Sscanf(id, "dep-%d", &depID); err != nil {
		return 0, false
	}
	return depID, true
}

// DepartmentList is the scrollable department column with thumbnail slots
type DepartmentList struct {
	items     []domain.Department
	favorites map[int]bool

	// Thumbnails
	thumbsOn    bool
	thumbs      map[int]string // department id -> resolved URL
	placeholder string
	slots       SlotStates

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title       string
	query       string
	loading     bool
	spinner     spinner.Model
	errMsg      string
	suggestions []string

	// Filter bar (owned by the caller, rendered here)
	filterBar string
}

// NewDepartmentList creates an empty list column
func NewDepartmentList(placeholder string) *DepartmentList {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle

	return &DepartmentList{
		favorites:   make(map[int]bool),
		thumbs:      make(map[int]string),
		placeholder: placeholder,
		title:       "Departamentos",
		spinner:     sp,
	}
}

// SetItems replaces the rows, keeping the cursor on the same department when possible
func (c *DepartmentList) SetItems(items []domain.Department, query string) {
	var selectedID int
	if d := c.Selected(); d != nil {
		selectedID = d.ID
	}

	c.items = items
	c.query = query
	c.loading = false
	c.errMsg = ""
	c.cursor = 0
	for i, d := range items {
		if d.ID == selectedID {
			c.cursor = i
			break
		}
	}
	c.ensureVisible()
}

// SetFavorites marks favorite department ids
func (c *DepartmentList) SetFavorites(ids []int) {
	c.favorites = make(map[int]bool, len(ids))
	for _, id := range ids {
		c.favorites[id] = true
	}
}

// SetSuggestions sets names offered when the query matches nothing
func (c *DepartmentList) SetSuggestions(names []string) {
	c.suggestions = names
}

// SetThumbsOn toggles the thumbnail slot column
func (c *DepartmentList) SetThumbsOn(on bool) {
	c.thumbsOn = on
}

// SetSlotStates provides live reveal states for rendering
func (c *DepartmentList) SetSlotStates(s SlotStates) {
	c.slots = s
}

// SetThumbnail records a resolved URL for a department
func (c *DepartmentList) SetThumbnail(depID int, url string) {
	c.thumbs[depID] = url
}

// Thumbnail returns the resolved URL of a department, if any
func (c *DepartmentList) Thumbnail(depID int) (string, bool) {
	url, ok := c.thumbs[depID]
	return url, ok
}

// SetLoading shows a spinner in place of rows
func (c *DepartmentList) SetLoading(loading bool) tea.Cmd {
	c.loading = loading
	if loading {
		c.errMsg = ""
		return c.spinner.Tick
	}
	return nil
}

// SetError replaces the rows with a message
func (c *DepartmentList) SetError(msg string) {
	c.loading = false
	c.errMsg = msg
}

// SetFilterBar sets the rendered filter input shown under the rows
func (c *DepartmentList) SetFilterBar(bar string) {
	if (bar == "") != (c.filterBar == "") {
		c.filterBar = bar
		c.recalcMaxVisible()
		c.ensureVisible()
		return
	}
	c.filterBar = bar
}

func (c *DepartmentList) SetTitle(title string) { c.title = title }

func (c *DepartmentList) SetFocused(focused bool) { c.focused = focused }

func (c *DepartmentList) IsFocused() bool { return c.focused }

func (c *DepartmentList) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible() // Scroll to show selected item now that we know the size
}

// Selected returns the department under the cursor
func (c *DepartmentList) Selected() *domain.Department {
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return nil
	}
	d := c.items[c.cursor]
	return &d
}

// ItemCount returns the number of rows
func (c *DepartmentList) ItemCount() int { return len(c.items) }

// RowIDs returns the slot ids of all rows in display order
func (c *DepartmentList) RowIDs() []string {
	ids := make([]string, len(c.items))
	for i, d := range c.items {
		ids[i] = SlotID(d.ID)
	}
	return ids
}

// Slots returns a reveal slot per row, marking already resolved ones loaded
func (c *DepartmentList) Slots() []reveal.Slot {
	slots := make([]reveal.Slot, len(c.items))
	for i, d := range c.items {
		_, loaded := c.thumbs[d.ID]
		slots[i] = reveal.Slot{ID: SlotID(d.ID), Name: d.Name, Loaded: loaded}
	}
	return slots
}

// Window returns the first visible row and the number of visible rows
func (c *DepartmentList) Window() (offset, height int) {
	return c.offset, c.maxVisible
}

// Update handles navigation keys and spinner ticks. It reports whether the
// visible window moved.
func (c *DepartmentList) Update(msg tea.Msg) (tea.Cmd, bool) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !c.loading {
			return nil, false
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(tick)
		return cmd, false
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.focused {
		return nil, false
	}
	count := len(c.items)
	if count == 0 {
		return nil, false
	}

	before := c.offset
	switch keyMsg.String() {
	case "j", "down":
		if c.cursor < count-1 {
			c.cursor++
		}
	case "k", "up":
		if c.cursor > 0 {
			c.cursor--
		}
	case "g", "home":
		c.cursor = 0
	case "G", "end":
		c.cursor = count - 1
	case "ctrl+d", "pgdown":
		c.cursor = min(c.cursor+max(c.maxVisible/2, 1), count-1)
	case "ctrl+u", "pgup":
		c.cursor = max(c.cursor-max(c.maxVisible/2, 1), 0)
	default:
		return nil, false
	}
	c.ensureVisible()
	return nil, c.offset != before
}

func (c *DepartmentList) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame (border) size so total rendered size equals c.width x c.height
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

// Internal methods

func (c *DepartmentList) recalcMaxVisible() {
	// Reserve space for: title line + scroll indicators
	interiorHeight := c.height - BorderHeight
	c.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if c.filterBar != "" {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *DepartmentList) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
	if maxOffset := max(len(c.items)-c.maxVisible, 0); c.offset > maxOffset {
		c.offset = maxOffset
	}
}

// Rendering

func (c *DepartmentList) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	if c.loading {
		return titleLine + "\n \n" + c.spinner.View() + styles.DimStyle.Render(" Cargando departamentos…")
	}
	if c.errMsg != "" {
		return titleLine + "\n \n" + styles.ErrorStyle.Render(styles.Truncate(c.errMsg, itemWidth))
	}

	count := len(c.items)
	if count == 0 {
		lines := []string{titleLine, " ", styles.DimStyle.Render("Sin resultados")}
		if len(c.suggestions) > 0 {
			lines = append(lines, styles.DimStyle.Render("¿Quisiste decir?"))
			for _, s := range c.suggestions {
				lines = append(lines, "  "+styles.AccentStyle.Render(s))
			}
		}
		if c.filterBar != "" {
			lines = append(lines, c.filterBar)
		}
		return strings.Join(lines, "\n")
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.renderRow(c.items[i], i == c.cursor, itemWidth))
	}

	// Always reserve space for the indicators to prevent layout shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ más")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ más")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterBar != "" {
		content += "\n" + c.filterBar + styles.DimStyle.Render(fmt.Sprintf(" [%d]", count))
	}
	return content
}

func (c *DepartmentList) renderRow(d domain.Department, selected bool, width int) string {
	star := styles.NotFavoriteChar
	starStyle := styles.DimStyle
	if c.favorites[d.ID] {
		star = styles.FavoriteChar
		starStyle = styles.AccentStyle
	}
	parts := []styles.RowPart{{Text: star + " ", Style: &starStyle}}

	// Available space: width - star(2) - margins(2) - slot(2)
	available := width - 4
	if c.thumbsOn {
		glyph, st := c.slotGlyph(d.ID)
		parts = append(parts, styles.RowPart{Text: glyph + " ", Style: &st})
		available -= 2
	}

	name := styles.Truncate(d.Name, max(available, 5))
	var matched []int
	if name == d.Name {
		matched = matchIndexes(c.query, d.Name)
	}
	parts = append(parts, highlightParts(name, matched, selected)...)
	return styles.RenderListRow(parts, selected, width)
}

func (c *DepartmentList) slotGlyph(depID int) (string, lipgloss.Style) {
	if url, ok := c.thumbs[depID]; ok {
		if url == c.placeholder {
			return styles.SlotPlaceholderChar, styles.DimStyle
		}
		return styles.SlotLoadedChar, styles.SuccessStyle
	}
	if c.slots != nil && c.slots.State(SlotID(depID)) == reveal.StateResolving {
		return styles.SlotResolvingChar, styles.AccentStyle
	}
	return styles.SlotPendingChar, styles.DimStyle
}
