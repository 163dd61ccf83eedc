package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/core/patch"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/hub"
)

// NewBrowseCommand creates the browse command
func NewBrowseCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse cached models interactively",
		Long: `Open a terminal UI over the local model cache. Navigate with the arrow
keys, press p to patch the selected model's config with the configured
field and value, r to rescan the cache, and q to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			program := tea.NewProgram(newBrowseModel(container), tea.WithAltScreen())
			_, err := program.Run()
			return err
		},
	}
}

// Styles for the browse UI
var (
	browseTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				MarginBottom(1)

	browseHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("250"))

	browseSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	browseStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86"))

	browseErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	browseHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

// browseModel is the bubbletea model for the cache browser
type browseModel struct {
	container *CLIContainer
	inventory *hub.Inventory
	cursor    int
	status    string
	err       error
	scanning  bool
	lastScan  time.Time
	width     int
	height    int
}

type browseTickMsg time.Time

type inventoryMsg struct {
	inventory *hub.Inventory
}

type browsePatchMsg struct {
	model  string
	result *patch.Result
}

type browseErrMsg struct {
	err error
}

func newBrowseModel(container *CLIContainer) browseModel {
	return browseModel{
		container: container,
		scanning:  true,
	}
}

func browseTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return browseTickMsg(t)
	})
}

func (m browseModel) scanCmd() tea.Cmd {
	scanner := m.container.Scanner
	return func() tea.Msg {
		inventory, err := scanner.Models(context.Background())
		if err != nil {
			return browseErrMsg{err: err}
		}
		return inventoryMsg{inventory: inventory}
	}
}

// patchCmd patches the selected entry's config file with the configured
// field and default value.
func (m browseModel) patchCmd(entry hub.Entry) tea.Cmd {
	container := m.container
	return func() tea.Msg {
		cfg := container.Config.Patch
		path, err := container.Locator.ResolveFile(entry.ID, "", cfg.File)
		if err != nil {
			return browseErrMsg{err: fmt.Errorf("%s: %w", entry.ID.String(), err)}
		}
		result, err := container.Patcher.EnsureField(path, cfg.Field, json.RawMessage(cfg.Value))
		if err != nil {
			return browseErrMsg{err: fmt.Errorf("%s: %w", entry.ID.String(), err)}
		}
		return browsePatchMsg{model: entry.ID.String(), result: result}
	}
}

// Init implements tea.Model
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.scanCmd(), browseTickCmd())
}

// Update implements tea.Model
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case browseTickMsg:
		return m, browseTickCmd()

	case inventoryMsg:
		m.inventory = msg.inventory
		m.scanning = false
		m.lastScan = time.Now()
		m.err = nil
		if m.cursor >= len(m.inventory.Entries) {
			m.cursor = max(0, len(m.inventory.Entries)-1)
		}
		return m, nil

	case browsePatchMsg:
		m.err = nil
		if msg.result.FieldAdded {
			m.status = fmt.Sprintf("patched %s (%s)", msg.model, msg.result.Target)
		} else {
			m.status = fmt.Sprintf("%s already set on %s", m.container.Config.Patch.Field, msg.model)
		}
		return m, nil

	case browseErrMsg:
		m.err = msg.err
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.inventory != nil && m.cursor < len(m.inventory.Entries)-1 {
				m.cursor++
			}
			return m, nil
		case "r":
			m.scanning = true
			m.status = ""
			return m, m.scanCmd()
		case "p":
			if m.inventory == nil || len(m.inventory.Entries) == 0 {
				return m, nil
			}
			m.status = "patching..."
			return m, m.patchCmd(m.inventory.Entries[m.cursor])
		}
	}

	return m, nil
}

// View implements tea.Model
func (m browseModel) View() string {
	view := m.renderHeader()
	view += m.renderModelTable()
	view += m.renderFooter()
	return view
}

func (m browseModel) renderHeader() string {
	title := browseTitleStyle.Render("📦 Hubfix Cache Browser")
	if m.inventory == nil {
		return title + "\n"
	}
	var total int64
	for _, entry := range m.inventory.Entries {
		total += entry.SizeBytes
	}
	summary := fmt.Sprintf("%d models | %s | cache: %s",
		len(m.inventory.Entries),
		humanBytes(total),
		m.inventory.CacheDir,
	)
	return title + "\n" + browseHeaderStyle.Render(summary) + "\n\n"
}

func (m browseModel) renderModelTable() string {
	if m.scanning && m.inventory == nil {
		return "Scanning cache...\n"
	}
	if m.inventory == nil || len(m.inventory.Entries) == 0 {
		return "No models cached yet.\n"
	}

	header := fmt.Sprintf("  %-42s %-5s %-12s %-7s %10s", "MODEL", "TYPE", "COMMIT", "PATCHED", "SIZE")
	rows := browseHeaderStyle.Render(header) + "\n"

	for i, entry := range m.inventory.Entries {
		commit := entry.Commit
		if commit == "" {
			commit = "-"
		}
		line := fmt.Sprintf("%-42s %-5s %-12s %-7s %10s",
			truncateString(entry.ID.String(), 42),
			entry.Type,
			truncateString(commit, 12),
			patchStateLabel(entry),
			humanBytes(entry.SizeBytes),
		)
		if i == m.cursor {
			rows += browseSelectedStyle.Render("▸ "+line) + "\n"
		} else {
			rows += "  " + line + "\n"
		}
	}
	return rows
}

func (m browseModel) renderFooter() string {
	footer := ""
	if m.err != nil {
		footer += browseErrorStyle.Render("error: "+m.err.Error()) + "\n"
	} else if m.status != "" {
		footer += browseStatusStyle.Render(m.status) + "\n"
	}
	if !m.lastScan.IsZero() {
		footer += browseHelpStyle.Render(fmt.Sprintf("scanned %s ago", time.Since(m.lastScan).Round(time.Second)))
		footer += "\n"
	}
	footer += browseHelpStyle.Render("Controls: [↑↓] Navigate | [p] Patch | [r] Rescan | [q] Quit")
	return footer
}
