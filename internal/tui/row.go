package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// RowModel browses one catalog row with an inline fuzzy filter. Opening an
// item pushes its detail page.
type RowModel struct {
	svcs Services
	row  domain.Row
	load tea.Cmd
	keys KeyMap

	spinner spinner.Model
	loading bool
	err     error

	items   map[string]domain.Details // by CatalogItem.CacheKey
	order   []domain.CatalogItem
	results []search.FilterResult
	cursor  int

	filter    textinput.Model
	filtering bool

	detail *DetailsModel

	width  int
	height int
}

// NewRowModel creates a row browser, optionally pre-filtered by query
func NewRowModel(svcs Services, row domain.Row, query string) RowModel {
	return newRowModel(svcs, row, LoadRowCmd(svcs.Details, row), query)
}

// NewSearchModel browses one page of catalog search results
func NewSearchModel(svcs Services, query string, page int) RowModel {
	row := domain.Row{Name: fmt.Sprintf("Search: %s", query)}
	if page > 1 {
		row.Name = fmt.Sprintf("%s (page %d)", row.Name, page)
	}
	return newRowModel(svcs, row, SearchCmd(svcs.Details, row, query, page), "")
}

func newRowModel(svcs Services, row domain.Row, load tea.Cmd, query string) RowModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "filter titles"
	ti.SetValue(query)

	return RowModel{
		svcs:    svcs,
		row:     row,
		load:    load,
		keys:    DefaultKeyMap(),
		spinner: s,
		loading: true,
		items:   make(map[string]domain.Details),
		filter:  ti,
		width:   maxBodyWidth,
		height:  24,
	}
}

// Init starts loading the row
func (m RowModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// Results returns the items currently shown, best match first
func (m RowModel) Results() []search.FilterResult {
	return m.results
}

// Selected returns the item under the cursor
func (m RowModel) Selected() (domain.CatalogItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return domain.CatalogItem{}, false
	}
	return m.results[m.cursor].Item, true
}

// Query returns the current filter text
func (m RowModel) Query() string {
	return m.filter.Value()
}

// InDetails reports whether a detail page is open
func (m RowModel) InDetails() bool {
	return m.detail != nil
}

func (m *RowModel) applyFilter() {
	m.results = search.Filter(m.filter.Value(), m.order)
	if m.cursor >= len(m.results) {
		m.cursor = max(len(m.results)-1, 0)
	}
}

// Update handles messages for the row browser
func (m RowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}

	if m.detail != nil {
		if _, ok := msg.(BackMsg); ok {
			m.detail = nil
			return m, nil
		}
		updated, cmd := m.detail.Update(msg)
		d := updated.(DetailsModel)
		m.detail = &d
		return m, cmd
	}

	switch msg := msg.(type) {
	case RowLoadedMsg:
		if msg.Row.Name != m.row.Name {
			return m, nil
		}
		m.loading = false
		m.order = make([]domain.CatalogItem, len(msg.Items))
		for i, d := range msg.Items {
			m.order[i] = d.Item
			m.items[d.Item.CacheKey()] = d
		}
		m.applyFilter()

	case ErrMsg:
		m.loading = false
		m.err = msg

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RowModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	m.applyFilter()
	return m, cmd
}

func (m RowModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		d := NewDetailsModel(m.svcs, item.Kind, item.ID)
		d.embedded = true
		d.width = m.width
		m.detail = &d
		return m, d.Init()
	}
	return m, nil
}

// View renders the row or the open detail page
func (m RowModel) View() string {
	if m.detail != nil {
		return m.detail.View()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.row.Name))
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(styles.FilterPromptStyle.Render("/ ") + m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading...")
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
	case len(m.results) == 0:
		b.WriteString(styles.DimStyle.Render("No matches"))
	default:
		b.WriteString(m.renderResults())
	}

	b.WriteString("\n\n")
	b.WriteString(renderHelp(m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Filter, m.keys.Back))
	return styles.RowStyle.Render(b.String())
}

// renderResults renders the window of results that keeps the cursor visible
func (m RowModel) renderResults() string {
	visible := max(m.height-8, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.results))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := m.results[i]
		lines = append(lines, renderRowItem(r, m.items[r.Item.CacheKey()], i == m.cursor, m.width-4))
	}
	return strings.Join(lines, "\n")
}
