package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/pkg/debruijn"
)

// generateCommand creates the generate command for drawing raw sequences.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		fold   int
		seed   uint64
		raw    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate <k> <n>",
		Short: "Draw a counterbalanced sequence over a k-symbol alphabet",
		Long: `Generate draws one pseudorandom sequence of order n over an alphabet of k
symbols: a sequence of length fold*k^n in which every window of n
consecutive symbols appears exactly fold times, read cyclically. The
sequence is one pass of a randomized Eulerian circuit through the
de Bruijn graph of k-ary words of length n-1.

Symbols are printed as the characters 0-9a-zA-Z, which covers alphabets of
up to 62 symbols. Larger alphabets require --raw, which prints
space-separated integers instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("alphabet size %q is not an integer", args[0])
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("order %q is not an integer", args[1])
			}
			if n < 2 {
				return fmt.Errorf("order must be at least 2, got %d", n)
			}

			var opts []debruijn.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, debruijn.WithSeed(seed))
			}
			return c.runGenerate(cmd, k, n, fold, raw, output, opts)
		},
	}

	cmd.Flags().IntVarP(&fold, "fold", "f", 1, "number of times each window appears")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible draw (random when omitted)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print symbols as space-separated integers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the sequence to a file instead of stdout")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, k, n, fold int, raw bool, output string, opts []debruijn.Option) error {
	logger := loggerFromContext(cmd.Context())

	if k > debruijn.MaxPrintableAlphabet && !raw {
		return fmt.Errorf("alphabet size %d exceeds the %d printable symbols; pass --raw for integer output",
			k, debruijn.MaxPrintableAlphabet)
	}

	pr := newProgress(logger)
	g, err := debruijn.New(k, n-1, opts...)
	if err != nil {
		return err
	}
	logger.Debugf("Graph built: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	seq, err := g.Sequence(fold)
	if err != nil {
		return err
	}
	pr.done(fmt.Sprintf("Generated %d symbols", len(seq)))

	var text string
	if raw {
		parts := make([]string, len(seq))
		for i, sym := range seq {
			parts[i] = strconv.Itoa(sym)
		}
		text = strings.Join(parts, " ")
	} else {
		if text, err = debruijn.Format(seq); err != nil {
			return err
		}
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess("Wrote %d symbols", len(seq))
		printFile(output)
		return nil
	}
	fmt.Println(text)
	return nil
}
