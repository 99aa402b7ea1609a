package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waxrank/waxrank/pkg/discogs"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FolderListModel - Interactive collection folder selection
// =============================================================================

// FolderListModel is the bubbletea model for interactive folder selection.
type FolderListModel struct {
	Folders  []discogs.Folder
	Cursor   int
	Selected *discogs.Folder
}

// NewFolderListModel creates a new folder list model.
func NewFolderListModel(folders []discogs.Folder) FolderListModel {
	return FolderListModel{Folders: folders}
}

func (m FolderListModel) Init() tea.Cmd {
	return nil
}

func (m FolderListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Folders)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Folders[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FolderListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Collection Folder"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Folders {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		count := listDimStyle.Render(fmt.Sprintf("%d releases", f.Count))
		line := fmt.Sprintf("%s%-25s  %s", cursor, f.Name, count)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Folders))))

	return b.String()
}

// pickFolder runs the interactive folder picker and returns the chosen
// folder name, or "" when the user quit without selecting.
func pickFolder(folders []discogs.Folder) (string, error) {
	prog := tea.NewProgram(NewFolderListModel(folders))
	final, err := prog.Run()
	if err != nil {
		return "", err
	}
	model, ok := final.(FolderListModel)
	if !ok || model.Selected == nil {
		return "", nil
	}
	return model.Selected.Name, nil
}

// isTerminal reports whether stdout is attached to a terminal; the
// interactive picker only makes sense when it is.
func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
