package dot

import (
	"errors"
	"strings"
	"testing"

	"github.com/seqlab/counterseq/pkg/debruijn"
)

func TestToDOTBasics(t *testing.T) {
	g, err := debruijn.New(2, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := ToDOT(g, Options{})
	if err != nil {
		t.Fatalf("ToDOT failed: %v", err)
	}

	for _, want := range []string{
		"digraph debruijn {",
		`n0 [label="00"]`,
		`n3 [label="11"]`,
		"n0 -> n0;", // self loop on 00
		"n0 -> n1;",
		"n2 -> n0;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "n0 -> n2") {
		t.Error("DOT output contains a non-edge 00 -> 10")
	}
}

func TestToDOTEdgeCount(t *testing.T) {
	g, err := debruijn.New(3, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := ToDOT(g, Options{})
	if err != nil {
		t.Fatalf("ToDOT failed: %v", err)
	}
	if got := strings.Count(out, "->"); got != g.EdgeCount() {
		t.Errorf("DOT has %d edges, want %d", got, g.EdgeCount())
	}
}

func TestToDOTDetailedAndHighlight(t *testing.T) {
	g, err := debruijn.New(2, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := ToDOT(g, Options{Detailed: true, Highlight: []int{1}})
	if err != nil {
		t.Fatalf("ToDOT failed: %v", err)
	}
	if !strings.Contains(out, `label="0\n#0"`) {
		t.Errorf("detailed label missing:\n%s", out)
	}
	if !strings.Contains(out, "fillcolor=gold") {
		t.Errorf("highlight attrs missing:\n%s", out)
	}
	if strings.Count(out, "fillcolor=gold") != 1 {
		t.Errorf("exactly one node should be highlighted:\n%s", out)
	}
}

func TestToDOTFoldAnnotation(t *testing.T) {
	g, err := debruijn.New(2, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := ToDOT(g, Options{Fold: 3})
	if err != nil {
		t.Fatalf("ToDOT failed: %v", err)
	}
	if strings.Count(out, `label="x3"`) != g.EdgeCount() {
		t.Errorf("every edge should carry the multiplicity label:\n%s", out)
	}
}

func TestToDOTTooLarge(t *testing.T) {
	g, err := debruijn.New(2, 10) // 1024 nodes
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := ToDOT(g, Options{}); !errors.Is(err, ErrGraphTooLarge) {
		t.Fatalf("error = %v, want ErrGraphTooLarge", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}
}

func TestNormalizeViewBoxPassThrough(t *testing.T) {
	in := []byte("<svg><g/></svg>")
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("SVG without viewBox modified: %s", got)
	}
}
