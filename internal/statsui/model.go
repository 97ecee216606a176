// Package statsui provides the Bubble Tea viewer for stored analysis results.
package statsui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/rtlab/internal/model"
	"github.com/verte-zerg/rtlab/internal/store"
)

const (
	tabDelays = iota
	tabStimuli
	tabRanges
	tabCorrelation
)

// tabs lists the viewer pages in display order. A nil render marks the
// page backed by the interactive stimulus table.
var tabs = []struct {
	title  string
	render func(res model.Result, width int) string
}{
	tabDelays:      {"Delays", func(res model.Result, width int) string { return renderDelays(res.Delays, width) }},
	tabStimuli:     {"Stimuli", nil},
	tabRanges:      {"Ranges", renderRanges},
	tabCorrelation: {"Correlation", renderCorrelation},
}

const helpLine = "Nav: left/right  Scroll: up/down/pgup/pgdn  Top/bottom: g/G  Reload: r  Quit: q"

// ResultLoader reads the last stored analysis result.
type ResultLoader interface {
	LoadResult(ctx context.Context) (model.Result, error)
}

// Model implements the Bubble Tea results viewer.
type Model struct {
	loader ResultLoader
	source string

	result model.Result
	errMsg string

	activeTab int
	pages     []viewport.Model
	stimTable table.Model

	width  int
	height int
}

// NewModel constructs a viewer over results read through loader. source is
// shown in the header, usually the database path.
func NewModel(loader ResultLoader, source string) *Model {
	m := &Model{
		loader:    loader,
		source:    source,
		pages:     make([]viewport.Model, len(tabs)),
		stimTable: newStimulusTable(),
	}
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.fillPages()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	onTable := m.activeTab == tabStimuli
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "left", "h":
		m.switchTab(-1)
		return tea.ClearScreen
	case "right", "l", "tab":
		m.switchTab(1)
		return tea.ClearScreen
	case "r":
		m.reload()
		m.resize()
		return nil
	case "g", "home":
		if onTable {
			m.stimTable.GotoTop()
		} else {
			m.pages[m.activeTab].GotoTop()
		}
		return nil
	case "G", "end":
		if onTable {
			m.stimTable.GotoBottom()
		} else {
			m.pages[m.activeTab].GotoBottom()
		}
		return nil
	}
	var cmd tea.Cmd
	if onTable {
		m.stimTable, cmd = m.stimTable.Update(msg)
	} else {
		m.pages[m.activeTab], cmd = m.pages[m.activeTab].Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerH, bodyH, footerH := m.heights()
	return strings.Join([]string{
		fitLines(m.header(), m.width, headerH),
		fitLines(m.body(), m.width, bodyH),
		fitLines(m.footer(), m.width, footerH),
	}, "\n")
}

// heights splits the window into header, body and footer line counts.
func (m *Model) heights() (header, body, footer int) {
	header = max(lipgloss.Height(theme.activeTab.Render("X")), 1) + 1
	footer = 1
	if m.errMsg != "" {
		footer = 2
	}
	return header, max(m.height-header-footer, 1), footer
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = body
	}
	m.stimTable.SetWidth(m.width)
	fitTableHeight(&m.stimTable, body)
}

func (m *Model) switchTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(tabs)) % len(tabs)
	if m.activeTab == tabStimuli {
		m.stimTable.Focus()
	} else {
		m.stimTable.Blur()
	}
}

func (m *Model) header() string {
	titles := make([]string, len(tabs))
	for i, t := range tabs {
		style := theme.inactiveTab
		if i == m.activeTab {
			style = theme.activeTab
		}
		titles[i] = style.Render(t.title)
	}
	info := fmt.Sprintf("Source: %s  participants=%d  trials=%d", m.source, m.result.Participants, len(m.result.Trials))
	return lipgloss.JoinHorizontal(lipgloss.Top, titles...) + "\n" + theme.muted.Render(truncateLine(info, m.width))
}

func (m *Model) footer() string {
	help := theme.muted.Render(helpLine)
	if m.errMsg == "" {
		return help
	}
	return help + "\n" + theme.err.Render(m.errMsg)
}

func (m *Model) body() string {
	if m.activeTab != tabStimuli || m.errMsg != "" {
		return m.pages[m.activeTab].View()
	}
	if len(m.result.Stimuli) == 0 {
		return "No target-present trials found."
	}
	return theme.tableText.Render(m.stimTable.View())
}

func (m *Model) reload() {
	res, err := m.loader.LoadResult(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		if errors.Is(err, store.ErrNoResult) {
			m.errMsg = "no stored result; run the analysis first"
		}
		m.result = model.Result{}
		for i := range m.pages {
			m.pages[i].SetContent("Failed to load results.")
		}
		return
	}
	m.errMsg = ""
	m.result = res
	m.stimTable.SetRows(stimulusRows(res.Stimuli))
	m.fillPages()
}

func (m *Model) fillPages() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, t := range tabs {
		if t.render != nil {
			m.pages[i].SetContent(t.render(m.result, width))
		}
	}
}
