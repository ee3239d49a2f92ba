package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/pkg/core/railfence"
	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/pipeline"
)

// maxPlayRails bounds the rail count in the interactive view.
const maxPlayRails = 32

var (
	playLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	playInputStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	playOutputStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	playCursorStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// PlayModel - Interactive fence explorer
// =============================================================================

// PlayModel is the bubbletea model of the interactive fence explorer.
// Typing edits the input, left/right change the rail count and tab switches
// between encoding and decoding.
type PlayModel struct {
	Input     []rune
	Rails     int
	Operation string
	Width     int
	Quit      bool
}

// NewPlayModel creates a model seeded with text and rails.
func NewPlayModel(text string, rails int) PlayModel {
	if rails < 2 {
		rails = 2
	}
	if rails > maxPlayRails {
		rails = maxPlayRails
	}
	return PlayModel{
		Input:     []rune(text),
		Rails:     rails,
		Operation: pipeline.OpEncode,
		Width:     80,
	}
}

func (m PlayModel) Init() tea.Cmd {
	return nil
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quit = true
			return m, tea.Quit
		case tea.KeyLeft, tea.KeyDown:
			if m.Rails > 2 {
				m.Rails--
			}
		case tea.KeyRight, tea.KeyUp:
			if m.Rails < maxPlayRails {
				m.Rails++
			}
		case tea.KeyTab:
			if m.Operation == pipeline.OpEncode {
				m.Operation = pipeline.OpDecode
			} else {
				m.Operation = pipeline.OpEncode
			}
		case tea.KeyBackspace:
			if len(m.Input) > 0 {
				m.Input = m.Input[:len(m.Input)-1]
			}
		case tea.KeyCtrlU:
			m.Input = nil
		case tea.KeySpace:
			m.Input = append(m.Input, ' ')
		case tea.KeyRunes:
			m.Input = append(m.Input, msg.Runes...)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

// Output returns the transformed input.
func (m PlayModel) Output() (string, error) {
	if m.Operation == pipeline.OpDecode {
		return railfence.DecodeString(string(m.Input), m.Rails)
	}
	return railfence.EncodeString(string(m.Input), m.Rails)
}

// plaintext returns the side of the transformation whose fence is drawn.
func (m PlayModel) plaintext(output string) string {
	if m.Operation == pipeline.OpDecode {
		return output
	}
	return string(m.Input)
}

func (m PlayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Rail Fence"))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render(m.Operation))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" · %d rails", m.Rails)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("type to edit  ←/→ rails  tab encode/decode  ctrl+u clear  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(playLabelStyle.Render("input"))
	b.WriteString(playInputStyle.Render(string(m.Input)))
	b.WriteString(playCursorStyle.Render("▏"))
	b.WriteString("\n")

	out, err := m.Output()
	if err != nil {
		b.WriteString(StyleWarning.Render(errors.UserMessage(err)))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(playLabelStyle.Render("output"))
	b.WriteString(playOutputStyle.Render(out))
	b.WriteString("\n\n")

	plain := m.plaintext(out)
	if plain == "" {
		return b.String()
	}
	g, err := railfence.RenderString(plain, m.Rails)
	if err != nil {
		return b.String()
	}
	if g.Width() <= m.Width-len(widestRailLabel) {
		b.WriteString(fence(g))
		b.WriteString("\n")
	}
	b.WriteString(railTable(g))
	b.WriteString("\n")

	return b.String()
}

// widestRailLabel is the longest label fence draws at maxPlayRails.
const widestRailLabel = "Rail 32: "

// railTable summarizes each rail's symbols in reading order.
func railTable(g railfence.Grid[rune]) string {
	rows := make([][]string, 0, g.Rails())
	for i, row := range g.Rows() {
		var s strings.Builder
		n := 0
		for _, c := range row {
			if c.Occupied {
				s.WriteRune(c.Symbol)
				n++
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(n), s.String()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rail", "Count", "Symbols").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		}).
		Render()
}

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var rails int

	cmd := &cobra.Command{
		Use:   "play [text]",
		Short: "Explore the fence interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			model := NewPlayModel(text, c.rails(cmd, rails))

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(c.In),
				tea.WithOutput(c.Err),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("run interactive view: %w", err)
			}

			if m, ok := final.(PlayModel); ok && len(m.Input) > 0 {
				if out, err := m.Output(); err == nil {
					fmt.Fprintln(c.Out, out)
				}
			}
			return nil
		},
	}

	addRailsFlag(cmd, &rails)

	return cmd
}
