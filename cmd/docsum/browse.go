package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/docsum/client"
	"github.com/a-h/docsum/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type BrowseCommand struct {
	ServerURL string `help:"The URL of the docsum server." env:"DOCSUM_SERVER_URL" default:"http://localhost:9020"`
	Token     string `help:"An API key or session token." env:"DOCSUM_TOKEN" default:""`
}

func (c BrowseCommand) Run(ctx context.Context) (err error) {
	dsc := client.New(c.ServerURL, c.Token)
	p := tea.NewProgram(newModel(ctx, dsc.HistoryGet), tea.WithAltScreen())
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var (
	headerStyle  = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Padding(0, 1)
	itemStyle    = lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan)
	statusStyle  = lipgloss.NewStyle().Margin(1).Foreground(Comment)
	errorStyle   = lipgloss.NewStyle().Margin(1).Foreground(Red)
	helpText     = "Type to filter. ↑/↓ to scroll. ctrl+r to reload. esc to quit."
	defaultWidth = 80
)

type historyLoadedMsg []models.HistoryItem

type historyErrorMsg struct {
	err error
}

type loadHistory func(ctx context.Context) ([]models.HistoryItem, error)

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	ctx      context.Context
	load     loadHistory
	items    []models.HistoryItem
	loaded   bool
	err      error
	width    int
}

func newModel(ctx context.Context, load loadHistory) model {
	ta := textarea.New()
	ta.Placeholder = "Filter by file name or summary..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 120

	ta.SetHeight(1)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(defaultWidth, 20)

	m := model{
		ctx:      ctx,
		textarea: ta,
		viewport: vp,
		load:     load,
		width:    defaultWidth,
	}
	m.render()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.fetch(),
	)
}

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		items, err := m.load(m.ctx)
		if err != nil {
			return historyErrorMsg{err: err}
		}
		return historyLoadedMsg(items)
	}
}

// filterHistory returns the items whose file name or summary contains the filter, ignoring case.
func filterHistory(items []models.HistoryItem, filter string) []models.HistoryItem {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return items
	}
	var matches []models.HistoryItem
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.FileName), filter) || strings.Contains(strings.ToLower(item.Summary), filter) {
			matches = append(matches, item)
		}
	}
	return matches
}

func formatItem(item models.HistoryItem, width int) string {
	// Allow for the padding and margin of the item style.
	return itemStyle.Render(formatHistoryItem(item, width-4))
}

func (m *model) render() {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("docsum history"))
	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render("Failed to load history: " + m.err.Error()))
	case !m.loaded:
		sb.WriteString(statusStyle.Render("Loading..."))
	default:
		matches := filterHistory(m.items, m.textarea.Value())
		sb.WriteString(statusStyle.Render(fmt.Sprintf("%d of %d documents", len(matches), len(m.items))))
		for _, item := range matches {
			sb.WriteString("\n")
			sb.WriteString(formatItem(item, m.width))
		}
	}
	m.viewport.SetContent(sb.String())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyErrorMsg:
		m.err = msg.err
		m.render()
		return m, nil
	case historyLoadedMsg:
		m.err = nil
		m.items = msg
		m.loaded = true
		m.render()
		m.viewport.GotoTop()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.textarea.SetWidth(msg.Width)
		m.render()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.loaded = false
			m.err = nil
			m.render()
			return m, m.fetch()
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		default:
			// Send all other keypresses to the filter.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			m.render()
			m.viewport.GotoTop()
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n\n%s\n%s",
		m.viewport.View(),
		m.textarea.View(),
		statusStyle.Render(helpText),
	) + "\n"
}
