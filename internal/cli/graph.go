package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/pkg/cache"
	"github.com/seqlab/counterseq/pkg/debruijn"
	"github.com/seqlab/counterseq/pkg/dot"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format         string // output format: dot, svg, png
	output         string // output file path
	detailed       bool   // include node indexes in labels
	fold           int    // annotate edge multiplicity when >= 2
	highlightStart bool   // draw a circuit and highlight its start node
	seed           uint64 // seed for the highlighted circuit
	seedSet        bool
	noCache        bool // bypass the render cache
	refresh        bool // drop any cached render first
}

// graphCommand creates the graph command for visualizing de Bruijn graphs.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <k> <n>",
		Short: "Render the de Bruijn graph behind a sequence",
		Long: `Graph renders the de Bruijn graph that generate walks for the same k and
n: nodes are the k-ary words of length n-1, edges are single-symbol
overlaps, and each Eulerian circuit through the graph is one
counterbalanced sequence of order n.

DOT output goes to stdout by default; SVG and PNG are written to a file.
Rendered SVG and PNG bytes are cached under the user cache directory, so
repeat invocations with the same parameters are instant.`,
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
			if err := validateGraphFormat(opts.format); err != nil {
				return err
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			return c.runGraph(cmd.Context(), k, n, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default debruijn_<k>_<n>.<format>)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node indexes in labels")
	cmd.Flags().IntVar(&opts.fold, "fold", 0, "annotate edges with a fold multiplicity")
	cmd.Flags().BoolVar(&opts.highlightStart, "highlight-start", false, "draw a circuit and highlight its start node")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the highlighted circuit")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached copy exists")

	return cmd
}

func validateGraphFormat(f string) error {
	switch f {
	case formatDOT, formatSVG, formatPNG:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
}

func (c *CLI) runGraph(ctx context.Context, k, n int, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	g, err := debruijn.New(k, n-1)
	if err != nil {
		return err
	}
	logger.Debugf("Graph built: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	dotOpts := dot.Options{Detailed: opts.detailed, Fold: opts.fold}
	if opts.highlightStart {
		start, err := circuitStart(k, n, opts)
		if err != nil {
			return err
		}
		dotOpts.Highlight = []int{start}
	}

	dotText, err := dot.ToDOT(g, dotOpts)
	if err != nil {
		return err
	}

	if opts.format == formatDOT {
		if opts.output == "" {
			fmt.Print(dotText)
			return nil
		}
		if err := os.WriteFile(opts.output, []byte(dotText), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.output, err)
		}
		printSuccess("Wrote DOT")
		printFile(opts.output)
		return nil
	}

	data, cached, err := c.renderCached(ctx, dotText, k, n, opts)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = fmt.Sprintf("debruijn_%d_%d.%s", k, n, opts.format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	printSuccess("Rendered %s", opts.format)
	printStats(g.NodeCount(), g.EdgeCount(), cached)
	printFile(path)
	return nil
}

// circuitStart draws one circuit (seeded when --seed is given) and returns
// its start node.
func circuitStart(k, n int, opts *graphOpts) (int, error) {
	var gopts []debruijn.Option
	if opts.seedSet {
		gopts = append(gopts, debruijn.WithSeed(opts.seed))
	}
	g, err := debruijn.New(k, n-1, gopts...)
	if err != nil {
		return 0, err
	}
	fold := opts.fold
	if fold < 1 {
		fold = 1
	}
	circuit, err := g.EulerCircuit(fold)
	if err != nil {
		return 0, err
	}
	return circuit[0], nil
}

// renderCached renders DOT to SVG or PNG bytes, replaying a cached render
// when one exists. Highlighted renders depend on a random draw and are
// never cached.
func (c *CLI) renderCached(ctx context.Context, dotText string, k, n int, opts *graphOpts) ([]byte, bool, error) {
	cacheable := !opts.highlightStart
	store, err := newCache(opts.noCache || !cacheable)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	key := cache.RenderKey(k, n-1, opts.format, opts.detailed, opts.fold)
	if opts.refresh {
		if err := store.Delete(ctx, key); err != nil {
			return nil, false, err
		}
	}
	if data, hit, err := store.Get(ctx, key); err != nil {
		return nil, false, err
	} else if hit {
		return data, true, nil
	}

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", opts.format))
	sp.Start()

	var data []byte
	switch opts.format {
	case formatSVG:
		data, err = dot.RenderSVG(dotText)
	case formatPNG:
		data, err = dot.RenderPNG(dotText)
	}
	if sp.Cancelled() {
		sp.Stop()
		return nil, false, context.Canceled
	}
	if err != nil {
		sp.StopWithError(fmt.Sprintf("Rendering failed: %v", err))
		return nil, false, err
	}
	sp.Stop()

	// Renders are pure functions of the parameters in the key, so entries
	// never go stale; the TTL only bounds disk usage over time.
	if err := store.Set(ctx, key, data, 30*24*time.Hour); err != nil {
		return nil, false, err
	}
	return data, false, nil
}
