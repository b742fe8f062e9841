package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ontoflow/pkg/pipeline"
	"github.com/matzehuels/ontoflow/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listOnStyle       = lipgloss.NewStyle().Foreground(colorGreen)
)

// Toggler flips toggle pairs. *pipeline.Session implements it.
type Toggler interface {
	Toggle(ctx context.Context, anchor, dependent string) (*pipeline.Frame, error)
	IsOn(anchor, dependent string) bool
}

// =============================================================================
// ToggleListModel - Interactive toggle selection
// =============================================================================

// ToggleListModel is the bubbletea model for interactive toggling.
type ToggleListModel struct {
	Pairs   []topology.Pair
	Cursor  int
	Height  int
	Offset  int
	Applied int
	Last    *pipeline.Frame
	LastErr error

	ctx     context.Context
	toggler Toggler
}

// NewToggleListModel creates a list over pairs backed by t.
func NewToggleListModel(ctx context.Context, t Toggler, pairs []topology.Pair) ToggleListModel {
	return ToggleListModel{
		Pairs:   pairs,
		Height:  15,
		ctx:     ctx,
		toggler: t,
	}
}

func (m ToggleListModel) Init() tea.Cmd {
	return nil
}

func (m ToggleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Pairs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Pairs) == 0 {
				return m, nil
			}
			p := m.Pairs[m.Cursor]
			frame, err := m.toggler.Toggle(m.ctx, p.Anchor, p.Dependent)
			m.LastErr = err
			if err == nil {
				m.Last = frame
				m.Applied++
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ToggleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Toggle Mental Models"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Pairs))
	for i := m.Offset; i < end; i++ {
		p := m.Pairs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		icon := listDimStyle.Render(iconOff)
		if m.toggler.IsOn(p.Anchor, p.Dependent) {
			icon = listOnStyle.Render(iconOn)
		}
		line := fmt.Sprintf("%s %s %s", p.Anchor, iconArrow, p.Dependent)
		if i == m.Cursor {
			line = listSelectedStyle.Render(line)
		} else {
			line = listNormalStyle.Render(line)
		}
		b.WriteString(cursor + icon + " " + line + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.LastErr != nil:
		b.WriteString(StyleError.Render("  " + iconError + " " + m.LastErr.Error()))
	case m.Last != nil:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  visible %d · affected %d · %s",
			len(m.Last.Visible), len(m.Last.Affected), patchSummary(m.Last))))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Pairs))))

	return b.String()
}
