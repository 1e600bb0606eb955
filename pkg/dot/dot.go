// Package dot renders de Bruijn graphs as Graphviz diagrams.
package dot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/seqlab/counterseq/pkg/debruijn"
)

// MaxNodes is the largest graph ToDOT accepts. Beyond this the diagram
// degenerates into an unreadable hairball and rendering time explodes, so
// the cut-off fails fast instead.
const MaxNodes = 512

// ErrGraphTooLarge is returned when a graph exceeds MaxNodes.
var ErrGraphTooLarge = errors.New("dot: graph too large to render")

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node index to each label in addition to the word.
	Detailed bool

	// Highlight accents the given node indexes, typically a circuit's
	// start node.
	Highlight []int

	// Fold annotates every edge with its multiplicity when 2 or more.
	Fold int
}

// ToDOT converts a de Bruijn graph to Graphviz DOT format. Nodes are
// labelled with their printable words, or with dot-separated symbol values
// when the alphabet exceeds the printable table. The resulting DOT string
// can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *debruijn.Graph, opts Options) (string, error) {
	if g.NodeCount() > MaxNodes {
		return "", fmt.Errorf("%w: %d nodes (max %d)", ErrGraphTooLarge, g.NodeCount(), MaxNodes)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph debruijn {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, margin=\"0.05,0.05\"];\n")
	buf.WriteString("\n")

	for i := range g.NodeCount() {
		label := nodeLabel(g, i, opts.Detailed)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if slices.Contains(opts.Highlight, i) {
			attrs = append(attrs, "fillcolor=gold", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range g.NodeCount() {
		for j := range g.NodeCount() {
			if !g.HasEdge(i, j) {
				continue
			}
			if opts.Fold >= 2 {
				fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", i, j, fmt.Sprintf("x%d", opts.Fold))
			} else {
				fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, j)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeLabel(g *debruijn.Graph, i int, detailed bool) string {
	word := g.Word(i)
	label, err := debruijn.Format(word)
	if err != nil {
		// Alphabet beyond the printable table: spell the symbols out.
		parts := make([]string, len(word))
		for p, s := range word {
			parts[p] = strconv.Itoa(s)
		}
		label = strings.Join(parts, ".")
	}
	if detailed {
		label = fmt.Sprintf("%s\n#%d", label, i)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	svg, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz. The rasterization
// happens in-process, no external tools are involved.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
