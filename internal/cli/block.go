package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/pkg/sequencer"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

// blockCommand creates the block command for expanding design files.
func (c *CLI) blockCommand() *cobra.Command {
	var (
		fold       int
		appendMode string
		seed       uint64
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "block <design.toml>",
		Short: "Expand a design file into a counterbalanced trial block",
		Long: `Block reads a TOML design file, crosses its factors into trial types, and
draws one counterbalanced block: every window of consecutive trial types
appears equally often across the block.

Flags override the design file's fold, append mode, and seed without
editing the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBlock(cmd, args[0], fold, appendMode, seed, format, output)
		},
	}

	cmd.Flags().IntVarP(&fold, "fold", "f", 0, "override the design's fold")
	cmd.Flags().StringVar(&appendMode, "append", "", "override the design's append mode: none, start, end")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the design's seed")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the block to a file instead of stdout")

	return cmd
}

func (c *CLI) runBlock(cmd *cobra.Command, path string, fold int, appendMode string, seed uint64, format, output string) error {
	logger := loggerFromContext(cmd.Context())

	d, err := sequencer.LoadDesign(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fold") {
		d.Fold = fold
	}
	if cmd.Flags().Changed("append") {
		d.Append = appendMode
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

	pr := newProgress(logger)
	trials, err := s.Block(d.Fold, mode)
	if err != nil {
		return err
	}
	pr.done(fmt.Sprintf("Generated %d trials", len(trials)))

	text, err := formatBlock(d, trials, format)
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess("Wrote %d trials", len(trials))
		printFile(output)
		return nil
	}

	fmt.Println(text)
	if format == formatTable {
		printDetail("%s · %d trial types · window %d · fold %d", d.Name, d.K(), d.Window, d.Fold)
		printNextStep("Preview interactively", "counterseq preview "+path)
	}
	return nil
}

// formatBlock serializes a trial block in the requested format.
func formatBlock(d *sequencer.Design, trials []sequencer.Trial, format string) (string, error) {
	switch format {
	case formatTable:
		return renderBlockTable(d, trials), nil
	case formatJSON:
		data, err := json.MarshalIndent(trials, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case formatCSV:
		return buildBlockCSV(d, trials)
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'table', 'json', or 'csv')", format)
	}
}

// renderBlockTable renders the block as a bordered terminal table with one
// column per factor.
func renderBlockTable(d *sequencer.Design, trials []sequencer.Trial) string {
	headers := []string{"#", "Symbol"}
	for _, f := range d.Factors {
		headers = append(headers, f.Name)
	}

	rows := make([][]string, len(trials))
	for i, tr := range trials {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(i), strconv.Itoa(tr.Symbol))
		row = append(row, tr.Levels...)
		rows[i] = row
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
			if col <= 1 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

// buildBlockCSV serializes the block as CSV with an index, the symbol, and
// one column per factor.
func buildBlockCSV(d *sequencer.Design, trials []sequencer.Trial) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"index", "symbol"}
	for _, f := range d.Factors {
		header = append(header, f.Name)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i, tr := range trials {
		row := append([]string{strconv.Itoa(i), strconv.Itoa(tr.Symbol)}, tr.Levels...)
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
