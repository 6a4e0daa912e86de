package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// DetailsModel is the detail page for one catalog item
type DetailsModel struct {
	svcs Services
	kind domain.MediaKind
	id   int64
	keys KeyMap

	spinner spinner.Model
	loading bool
	details *domain.Details
	inList  bool
	status  string
	err     error

	width    int
	embedded bool // back returns to the parent view instead of quitting
}

// NewDetailsModel creates a detail page that quits the program on back
func NewDetailsModel(svcs Services, kind domain.MediaKind, id int64) DetailsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return DetailsModel{
		svcs:    svcs,
		kind:    kind,
		id:      id,
		keys:    DefaultKeyMap(),
		spinner: s,
		loading: true,
		width:   maxBodyWidth,
	}
}

// Init starts loading the page
func (m DetailsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, LoadDetailsCmd(m.svcs, m.kind, m.id))
}

// Details returns the loaded page, or nil while loading
func (m DetailsModel) Details() *domain.Details {
	return m.details
}

func (m DetailsModel) matches(kind domain.MediaKind, id int64) bool {
	return m.kind == kind && m.id == id
}

// Update handles messages for the detail page
func (m DetailsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case DetailsLoadedMsg:
		if !m.matches(msg.Details.Item.Kind, msg.Details.Item.ID) {
			return m, nil
		}
		d := msg.Details
		m.details = &d
		m.inList = msg.InList
		m.loading = false
		m.err = nil

	case ListToggledMsg:
		if !m.matches(msg.Kind, msg.ID) {
			return m, nil
		}
		m.inList = msg.InList
		if msg.InList {
			m.status = "Added to My List"
		} else {
			m.status = "Removed from My List"
		}

	case TrailerLaunchedMsg:
		m.status = "Playing " + msg.Trailer.Name

	case ErrMsg:
		if m.loading {
			m.loading = false
			m.err = msg
			return m, nil
		}
		if errors.Is(msg.Err, service.ErrNoTrailer) {
			m.status = "No trailer available"
			return m, nil
		}
		m.status = msg.Error()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DetailsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.embedded {
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Trailer):
		if m.details == nil || m.svcs.Trailer == nil {
			return m, nil
		}
		m.status = "Launching trailer..."
		return m, PlayTrailerCmd(m.svcs.Trailer, m.kind, m.id)
	case key.Matches(msg, m.keys.ToggleList):
		if m.details == nil || m.svcs.List == nil {
			return m, nil
		}
		return m, ToggleListCmd(m.svcs.List, m.details.Item, m.inList)
	}
	return m, nil
}

// View renders the detail page
func (m DetailsModel) View() string {
	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + " Loading..."
	case m.err != nil:
		body = styles.ErrorStyle.Render(m.err.Error())
	default:
		body = RenderDetails(*m.details, m.inList, m.width-4)
	}

	if m.status != "" {
		body += "\n\n" + styles.AccentStyle.Render(m.status)
	}
	body += "\n\n" + renderHelp(m.keys.Trailer, m.keys.ToggleList, m.keys.Back)
	return styles.DetailsStyle.Render(body)
}
