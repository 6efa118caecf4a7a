package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/personal"
	"github.com/mmcdole/explorador/internal/reveal"
	"github.com/mmcdole/explorador/internal/tui/components"
	"github.com/mmcdole/explorador/internal/tui/styles"
)

// Pane identifies which side of the screen receives navigation keys
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// inputPurpose says what the single-line modal is collecting
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputAddFavorite
	inputRenameFavorite
)

// Layout proportions
const (
	ListColumnPercent = 38
	MinColumnWidth    = 24

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Options tunes the model from configuration
type Options struct {
	ProximityRows int              // rows outside the window that count as visible
	Prefetch      int              // concurrent thumbnail lookups
	DefaultSort   browse.SortOrder // initial and reset sort
	Placeholder   string           // URL the resolver returns when nothing is found
	Logger        *slog.Logger
}

// watcher is the live visibility pipeline for list thumbnails
type watcher struct {
	trigger  *reveal.Trigger
	viewport *reveal.Viewport
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready  bool
	Width  int
	Height int

	// Services
	browse   *browse.Service
	personal *personal.Service
	resolver reveal.Resolver
	opener   domain.URLOpener
	opts     Options
	logger   *slog.Logger

	// Data
	departments []domain.Department
	params      browse.ListParams

	// UI components
	list      *components.DepartmentList
	detail    components.DetailPanel
	detailID  int
	noteForm  components.NoteForm
	input     components.InputModal
	inputFor  inputPurpose
	renameID  string
	filter    textinput.Model
	filtering bool
	help      help.Model
	showHelp  bool
	pane      Pane

	// Thumbnails
	thumbsOn bool
	watcher  *watcher
	results  chan reveal.Result
	observer *ChannelObserver
	done     chan struct{}
	stop     *sync.Once

	// Status bar
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(browseSvc *browse.Service, personalSvc *personal.Service, resolver reveal.Resolver, opener domain.URLOpener, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Prefetch < 1 {
		opts.Prefetch = 1
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = browse.SortNameAsc
	}

	ti := textinput.New()
	ti.Placeholder = "Buscar departamento…"
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	results := make(chan reveal.Result, 16)
	done := make(chan struct{})

	thumbsOn := personalSvc.ThumbnailsEnabled()
	list := components.NewDepartmentList(opts.Placeholder)
	list.SetFocused(true)
	list.SetThumbsOn(thumbsOn)

	return Model{
		browse:   browseSvc,
		personal: personalSvc,
		resolver: resolver,
		opener:   opener,
		opts:     opts,
		logger:   opts.Logger,
		params:   browse.ListParams{View: browse.ViewAll, Sort: opts.DefaultSort},
		list:     list,
		detail:   components.NewDetailPanel(),
		noteForm: components.NewNoteForm(),
		input:    components.NewInputModal(),
		filter:   ti,
		help:     h,
		thumbsOn: thumbsOn,
		results:  results,
		observer: NewChannelObserver(results, done),
		done:     done,
		stop:     &sync.Once{},
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.list.SetLoading(true),
		LoadDepartmentsCmd(m.browse),
		WaitForThumbnailCmd(m.results),
	)
}

// Shutdown cancels in-flight thumbnail lookups. Safe to call more than once.
func (m Model) Shutdown() {
	m.stop.Do(func() {
		if m.watcher != nil {
			m.watcher.trigger.Close()
		}
		close(m.done)
	})
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		listCmd, _ := m.list.Update(msg)
		var detailCmd tea.Cmd
		m.detail, detailCmd = m.detail.Update(msg)
		return m, tea.Batch(listCmd, detailCmd)

	case DepartmentsLoadedMsg:
		m.departments = msg.Departments
		m.applyList()
		return m, nil

	case DepartmentsFailedMsg:
		m.logger.Error("department list unavailable", "error", msg.Err)
		m.departments = nil
		m.list.SetItems(nil, m.params.Query)
		m.rebuildWatcher()
		m.list.SetError("Error al cargar departamentos. Intenta más tarde.")
		return m, nil

	case DetailLoadedMsg:
		if msg.ID != m.detailID {
			return m, nil // stale response
		}
		m.detail.SetDetail(msg.Detail)
		m.refreshPersonal()
		return m, nil

	case DetailFailedMsg:
		if msg.ID != m.detailID {
			return m, nil
		}
		m.detail.SetError(msg.Err.Error())
		return m, nil

	case ThumbnailLoadedMsg:
		if id, ok := components.ParseSlotID(msg.Result.SlotID); ok {
			m.list.SetThumbnail(id, msg.Result.URL)
		}
		return m, WaitForThumbnailCmd(m.results)

	case ImageOpenedMsg:
		return m.setStatus("Imagen abierta", false)

	case ErrMsg:
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Cursor blink and other component messages
	return m.routeToInputs(msg)
}

func (m Model) routeToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.noteForm.IsVisible():
		m.noteForm, cmd, _ = m.noteForm.Update(msg)
	case m.input.IsVisible():
		m.input, cmd, _ = m.input.Update(msg)
	case m.filtering:
		m.filter, cmd = m.filter.Update(msg)
	}
	return m, cmd
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Route to active modal if any
	if m.noteForm.IsVisible() {
		return m.updateNoteForm(msg)
	}
	if m.input.IsVisible() {
		return m.updateInputModal(msg)
	}
	if m.showHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.filtering {
		return m.updateFilter(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, Keys.NextPane):
		m.cyclePane()
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.filtering = true
		m.setFocusList()
		cmd := m.filter.Focus()
		m.list.SetFilterBar(m.filter.View())
		m.syncViewport()
		return m, cmd

	case key.Matches(msg, Keys.Sort):
		if m.params.Sort == browse.SortNameDesc {
			m.params.Sort = browse.SortNameAsc
		} else {
			m.params.Sort = browse.SortNameDesc
		}
		m.applyList()
		return m, nil

	case key.Matches(msg, Keys.View):
		if m.params.View == browse.ViewFavorites {
			m.params.View = browse.ViewAll
		} else {
			m.params.View = browse.ViewFavorites
		}
		m.applyList()
		return m, nil

	case key.Matches(msg, Keys.Reset):
		m.params.Query = ""
		m.params.Sort = browse.SortNameAsc
		m.params.View = browse.ViewAll
		m.filter.SetValue("")
		m.list.SetFilterBar("")
		m.applyList()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		cmd := m.list.SetLoading(true)
		return m, tea.Batch(cmd, LoadDepartmentsCmd(m.browse))

	case key.Matches(msg, Keys.Thumbnails):
		return m.toggleThumbnails()

	case key.Matches(msg, Keys.Favorite):
		return m.toggleFavorite()

	case key.Matches(msg, Keys.OpenImage):
		return m.openImage()
	}

	if m.pane == PaneDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Enter) {
		if d := m.list.Selected(); d != nil {
			return m, m.openDetail(d.ID)
		}
		return m, nil
	}
	if key.Matches(msg, Keys.Escape) && m.params.Query != "" {
		m.params.Query = ""
		m.filter.SetValue("")
		m.list.SetFilterBar("")
		m.applyList()
		return m, nil
	}

	cmd, moved := m.list.Update(msg)
	if moved {
		m.syncViewport()
	}
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Escape) {
		m.setFocusList()
		return m, nil
	}
	d := m.detail.Detail()
	if d == nil {
		return m, nil
	}
	depID := d.Department.ID

	switch m.detail.Section() {
	case components.SectionCities:
		if key.Matches(msg, Keys.Pin) {
			if c := m.detail.SelectedCity(); c != nil {
				if _, err := m.personal.AddMunicipalityFavorite(depID, c.Name); err != nil {
					return m.personalError(err)
				}
				m.refreshPersonal()
				return m.setStatus("Municipio fijado: "+c.Name, false)
			}
			return m, nil
		}
		if key.Matches(msg, Keys.New) {
			return m, m.noteForm.Show(nil)
		}

	case components.SectionNotes:
		switch {
		case key.Matches(msg, Keys.New):
			return m, m.noteForm.Show(nil)
		case key.Matches(msg, Keys.Edit):
			if n := m.detail.SelectedNote(); n != nil {
				return m, m.noteForm.Show(n)
			}
			return m, nil
		case key.Matches(msg, Keys.Delete):
			if n := m.detail.SelectedNote(); n != nil {
				if err := m.personal.DeleteNote(depID, n.ID); err != nil {
					return m.personalError(err)
				}
				m.refreshPersonal()
			}
			return m, nil
		}

	case components.SectionFavorites:
		switch {
		case key.Matches(msg, Keys.New):
			m.inputFor = inputAddFavorite
			return m, m.input.Show("Fijar municipio", "")
		case key.Matches(msg, Keys.Edit):
			if f := m.detail.SelectedFavorite(); f != nil {
				m.inputFor = inputRenameFavorite
				m.renameID = f.ID
				return m, m.input.Show("Renombrar municipio", f.Name)
			}
			return m, nil
		case key.Matches(msg, Keys.Delete):
			if f := m.detail.SelectedFavorite(); f != nil {
				if err := m.personal.RemoveMunicipalityFavorite(depID, f.ID); err != nil {
					return m.personalError(err)
				}
				m.refreshPersonal()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.params.Query = ""
		m.list.SetFilterBar("")
		m.applyList()
		return m, nil
	case "enter":
		// Keep the query, return keys to the list
		m.filtering = false
		m.filter.Blur()
		if m.params.Query == "" {
			m.list.SetFilterBar("")
		} else {
			m.list.SetFilterBar(m.filter.View())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if q := m.filter.Value(); q != m.params.Query {
		m.params.Query = q
		m.applyList()
	}
	m.list.SetFilterBar(m.filter.View())
	return m, cmd
}

func (m Model) updateNoteForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd       tea.Cmd
		submitted bool
	)
	m.noteForm, cmd, submitted = m.noteForm.Update(msg)
	if !submitted {
		return m, cmd
	}

	d := m.detail.Detail()
	if d == nil {
		m.noteForm.Hide()
		return m, nil
	}
	title, text := m.noteForm.Values()
	_, err := m.personal.SaveNote(d.Department.ID, personal.NoteInput{
		ID:    m.noteForm.EditingID(),
		Title: title,
		Text:  text,
	})
	if errors.Is(err, domain.ErrInvalidInput) {
		return m, nil // form stays open
	}
	m.noteForm.Hide()
	if err != nil {
		return m.personalError(err)
	}
	m.refreshPersonal()
	return m, nil
}

func (m Model) updateInputModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd       tea.Cmd
		submitted bool
	)
	m.input, cmd, submitted = m.input.Update(msg)
	if !submitted {
		return m, cmd
	}

	d := m.detail.Detail()
	if d == nil {
		m.input.Hide()
		return m, nil
	}
	var err error
	switch m.inputFor {
	case inputAddFavorite:
		_, err = m.personal.AddMunicipalityFavorite(d.Department.ID, m.input.Value())
	case inputRenameFavorite:
		err = m.personal.RenameMunicipalityFavorite(d.Department.ID, m.renameID, m.input.Value())
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return m, nil
	}
	m.input.Hide()
	m.inputFor = inputNone
	if err != nil {
		return m.personalError(err)
	}
	m.refreshPersonal()
	return m, nil
}

func (m Model) toggleThumbnails() (tea.Model, tea.Cmd) {
	on := !m.thumbsOn
	if err := m.personal.SetThumbnailsEnabled(on); err != nil {
		return m.personalError(err)
	}
	m.thumbsOn = on
	m.list.SetThumbsOn(on)
	m.rebuildWatcher()
	if on {
		return m.setStatus("Miniaturas activadas", false)
	}
	return m.setStatus("Miniaturas desactivadas", false)
}

func (m Model) toggleFavorite() (tea.Model, tea.Cmd) {
	var id int
	if m.pane == PaneDetail && m.detail.Detail() != nil {
		id = m.detail.Detail().Department.ID
	} else if d := m.list.Selected(); d != nil {
		id = d.ID
	} else {
		return m, nil
	}

	if _, err := m.personal.ToggleDepartmentFavorite(id); err != nil {
		return m.personalError(err)
	}
	m.applyList()
	if id == m.detailID {
		m.refreshPersonal()
	}
	return m, nil
}

func (m Model) openImage() (tea.Model, tea.Cmd) {
	url := ""
	if d := m.detail.Detail(); m.pane == PaneDetail && d != nil {
		url = d.ImageURL
	} else if d := m.list.Selected(); d != nil {
		url, _ = m.list.Thumbnail(d.ID)
		if url == "" && m.detail.Detail() != nil && m.detail.Detail().Department.ID == d.ID {
			url = m.detail.Detail().ImageURL
		}
	}
	if url == "" {
		return m.setStatus("Sin imagen todavía: abre el detalle o activa las miniaturas", true)
	}
	return m, OpenImageCmd(m.opener, url)
}

// openDetail starts loading a department; earlier in-flight loads become stale
func (m *Model) openDetail(id int) tea.Cmd {
	m.detailID = id
	cmd := m.detail.SetLoading()
	return tea.Batch(cmd, LoadDetailCmd(m.browse, id))
}

func (m *Model) refreshPersonal() {
	if m.detailID == 0 {
		return
	}
	m.detail.SetPersonal(
		m.personal.IsDepartmentFavorite(m.detailID),
		m.personal.Notes(m.detailID),
		m.personal.MunicipalityFavorites(m.detailID),
	)
}

// applyList re-derives the visible rows and rebuilds the thumbnail watcher
func (m *Model) applyList() {
	favs := m.personal.DepartmentFavorites()
	m.params.Favorites = favs

	items := browse.Filter(m.departments, m.params)
	m.list.SetItems(items, m.params.Query)
	m.list.SetFavorites(favs)

	var suggestions []string
	if len(items) == 0 && m.params.Query != "" {
		suggestions = browse.Suggest(m.departments, m.params.Query, 3)
	}
	m.list.SetSuggestions(suggestions)
	m.list.SetTitle(m.listTitle(len(items), len(favs)))

	m.rebuildWatcher()
}

func (m Model) listTitle(shown, favCount int) string {
	order := "A-Z"
	if m.params.Sort == browse.SortNameDesc {
		order = "Z-A"
	}
	favs := fmt.Sprintf("Favoritos (%d)", favCount)
	if m.params.View == browse.ViewFavorites {
		favs = styles.FavoriteChar + " " + favs
	}
	return fmt.Sprintf("Departamentos (%d) · %s · %s", shown, order, favs)
}

// rebuildWatcher discards the current visibility pipeline and, with
// thumbnails on, observes every row again. Rows with a known URL start loaded.
func (m *Model) rebuildWatcher() {
	if m.watcher != nil {
		m.watcher.trigger.Close()
		m.watcher = nil
	}
	m.list.SetSlotStates(nil)
	if !m.thumbsOn || m.list.ItemCount() == 0 {
		return
	}

	vp := reveal.NewViewport(m.opts.ProximityRows)
	vp.SetRows(m.list.RowIDs())
	tr := reveal.NewTrigger(context.Background(), vp, m.resolver, m.observer.OnLoad,
		reveal.WithConcurrency(m.opts.Prefetch),
		reveal.WithLogger(m.logger),
	)
	tr.Observe(m.list.Slots()...)

	m.watcher = &watcher{trigger: tr, viewport: vp}
	m.list.SetSlotStates(tr)
	m.syncViewport()
}

// syncViewport reports the list window to the visibility source
func (m *Model) syncViewport() {
	if m.watcher == nil || !m.Ready {
		return
	}
	offset, height := m.list.Window()
	m.watcher.viewport.Scroll(offset, height)
}

func (m *Model) cyclePane() {
	if m.pane == PaneList {
		if m.detail.Detail() == nil {
			return
		}
		m.pane = PaneDetail
		m.list.SetFocused(false)
		m.detail.Focus(components.SectionCities)
		return
	}
	next := m.detail.NextSection()
	if next == components.SectionNone {
		m.setFocusList()
		return
	}
	m.detail.Focus(next)
}

func (m *Model) setFocusList() {
	m.pane = PaneList
	m.list.SetFocused(true)
	m.detail.Focus(components.SectionNone)
}

func (m Model) personalError(err error) (tea.Model, tea.Cmd) {
	m.logger.Error("failed to update preferences", "error", err)
	return m.setStatus("No se pudo guardar: "+err.Error(), true)
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(3 * time.Second)
}
