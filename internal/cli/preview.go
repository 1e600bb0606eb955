package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/pkg/sequencer"
)

// previewCommand creates the preview command for browsing a block in an
// interactive pager.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		fold int
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "preview <design.toml>",
		Short: "Browse a generated trial block interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := sequencer.LoadDesign(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("fold") {
				d.Fold = fold
			}
			if err := d.Validate(); err != nil {
				return err
			}

			var opts []sequencer.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, sequencer.WithSeed(seed))
			}
			s, err := d.Sequencer(opts...)
			if err != nil {
				return err
			}
			mode, err := d.AppendMode()
			if err != nil {
				return err
			}
			trials, err := s.Block(d.Fold, mode)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newBlockModel(d, trials))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&fold, "fold", "f", 0, "override the design's fold")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the design's seed")

	return cmd
}

// blockModel is the bubbletea model for scrolling through a trial block.
type blockModel struct {
	design *sequencer.Design
	trials []sequencer.Trial
	cursor int
	offset int
	height int
}

func newBlockModel(d *sequencer.Design, trials []sequencer.Trial) blockModel {
	return blockModel{
		design: d,
		trials: trials,
		height: 15,
	}
}

func (m blockModel) Init() tea.Cmd {
	return nil
}

func (m blockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.trials)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "pgup", "b":
			m.cursor -= m.height
			if m.cursor < 0 {
				m.cursor = 0
			}
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		case "pgdown", "f", " ":
			m.cursor += m.height
			if m.cursor > len(m.trials)-1 {
				m.cursor = len(m.trials) - 1
			}
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "end", "G":
			m.cursor = len(m.trials) - 1
			m.offset = m.cursor - m.height + 1
			if m.offset < 0 {
				m.offset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m blockModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Block · " + m.design.Name))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ scroll  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.trials) {
		end = len(m.trials)
	}

	headers := []string{"", "#", "Symbol"}
	for _, f := range m.design.Factors {
		headers = append(headers, f.Name)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		tr := m.trials[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		row := []string{cursor, strconv.Itoa(i), strconv.Itoa(tr.Symbol)}
		row = append(row, tr.Levels...)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			}
			if col <= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())

	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.trials))))
	return b.String()
}
