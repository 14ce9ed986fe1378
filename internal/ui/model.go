package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
	"github.com/ngmaloney/reefcast/internal/render"
)

// AppState represents the current state of the application
type AppState int

const (
	StateLoading AppState = iota // Digest run in flight
	StateDisplay                 // Browsing the ranked sites
	StateError                   // Error state
)

// chrome is the rows taken by the title, tabs, help and borders
const chrome = 10

// Model is the interactive digest browser
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	generator DigestGenerator
	opts      digest.Options
	renderer  *render.Renderer

	spinner spinner.Model
	table   table.Model

	report     *digest.Report
	coasts     []models.Coast // tab order; tab 0 is every site
	activeTab  int
	showDetail bool
}

// NewModel creates a browser that loads its digest from gen
func NewModel(gen DigestGenerator, opts digest.Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:     StateLoading,
		generator: gen,
		opts:      opts,
		renderer:  render.New(true),
		spinner:   s,
		table:     newSiteTable(nil, 10),
	}
}

// Init starts the first digest run
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDigest(m.generator, m.opts))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case digestLoadedMsg:
		m.report = msg.report
		m.coasts = coastTabs(msg.report.Ranked)
		if m.activeTab > len(m.coasts) {
			m.activeTab = 0
		}
		m.showDetail = false
		m.state = StateDisplay
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == StateLoading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	switch m.state {
	case StateError:
		// Any key retries
		return m.reload()

	case StateDisplay:
		switch msg.String() {
		case "r":
			return m.reload()
		case "tab", "right", "l":
			m.selectTab(m.activeTab + 1)
			return m, nil
		case "shift+tab", "left", "h":
			m.selectTab(m.activeTab - 1)
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail && len(m.visibleSites()) > 0
			return m, nil
		case "esc":
			m.showDetail = false
			return m, nil
		}

		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.state = StateLoading
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, loadDigest(m.generator, m.opts))
}

// selectTab moves to tab i, wrapping at either end
func (m *Model) selectTab(i int) {
	n := len(m.coasts) + 1
	m.activeTab = ((i % n) + n) % n
	m.showDetail = false
	m.refreshTable()
}

func (m *Model) refreshTable() {
	m.table.SetRows(siteRows(m.visibleSites()))
	m.table.SetCursor(0)
}

// visibleSites are the ranked sites on the active tab, best first
func (m Model) visibleSites() []ranking.RankedLocation {
	if m.report == nil {
		return nil
	}
	if m.activeTab == 0 {
		return m.report.Ranked
	}
	coast := m.coasts[m.activeTab-1]
	var sites []ranking.RankedLocation
	for _, r := range m.report.Ranked {
		if r.Location.Coast == coast {
			sites = append(sites, r)
		}
	}
	return sites
}

// selectedSite returns the site under the table cursor
func (m Model) selectedSite() (ranking.RankedLocation, bool) {
	sites := m.visibleSites()
	i := m.table.Cursor()
	if i < 0 || i >= len(sites) {
		return ranking.RankedLocation{}, false
	}
	return sites[i], true
}

func (m Model) tableHeight() int {
	return max(m.height-chrome, 3)
}

// coastTabs lists the coasts in the order they first appear in the ranking
func coastTabs(ranked []ranking.RankedLocation) []models.Coast {
	var coasts []models.Coast
	seen := make(map[models.Coast]bool)
	for _, r := range ranked {
		if !seen[r.Location.Coast] {
			seen[r.Location.Coast] = true
			coasts = append(coasts, r.Location.Coast)
		}
	}
	return coasts
}

// View renders the UI
func (m Model) View() string {
	switch m.state {
	case StateLoading:
		return m.viewLoading()
	case StateError:
		return m.viewError()
	case StateDisplay:
		return m.viewDisplay()
	}
	return ""
}

func (m Model) viewLoading() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		titleStyle.Render("reefcast"),
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), mutedStyle.Render("Fetching buoys, wave model, tides, wind and advisories...")),
	)
}

func (m Model) viewError() string {
	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("✗ Error"),
		"",
		errorMsg,
		helpStyle.Render("Press any key to retry • Q: Quit"),
	)
}

func (m Model) viewDisplay() string {
	r := m.report
	header := titleStyle.Render(fmt.Sprintf("Oahu Dive Conditions - %s", r.GeneratedAt.Format("Mon Jan 2, 3:04 PM")))
	summary := fmt.Sprintf("%d/%d sites diveable", r.DiveableSites, r.TotalSites)
	if r.BestCoast != "" {
		summary += " • best coast: " + successStyle.Render(r.BestCoast)
	}

	sections := []string{header, mutedStyle.Render(summary), "", m.viewTabs(), ""}

	if len(m.visibleSites()) == 0 {
		sections = append(sections, mutedStyle.Render("No sites to show"))
	} else {
		sections = append(sections, m.table.View())
	}

	if m.showDetail {
		if site, ok := m.selectedSite(); ok {
			sections = append(sections, paneStyle.Render(m.renderer.Detail(site)))
		}
	}

	if len(r.Errors) > 0 {
		sections = append(sections, "", errorStyle.Render(fmt.Sprintf("%d data issue(s): %s", len(r.Errors), r.Errors[0])))
	}

	help := helpStyle.Render("↑/↓: Navigate • Tab/←/→: Coast • Enter: Details • R: Refresh • Q: Quit")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	labels := make([]string, 0, len(m.coasts)+1)
	labels = append(labels, "All")
	for _, c := range m.coasts {
		labels = append(labels, c.DisplayName())
	}

	tabs := make([]string, len(labels))
	for i, label := range labels {
		if i == m.activeTab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return strings.Join(tabs, " ")
}
