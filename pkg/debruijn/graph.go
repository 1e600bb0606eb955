package debruijn

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// Common errors returned by graph construction and sequence generation.
var (
	// ErrInvalidAlphabet is returned when the alphabet size is below 1.
	ErrInvalidAlphabet = errors.New("debruijn: alphabet size must be at least 1")

	// ErrInvalidOrder is returned when the word length is below 1.
	ErrInvalidOrder = errors.New("debruijn: word length must be at least 1")

	// ErrInvalidFold is returned when the fold factor is below 1.
	ErrInvalidFold = errors.New("debruijn: fold factor must be at least 1")

	// ErrInvalidArgument is returned when a sequence contains a negative
	// symbol or an argument is otherwise outside its domain.
	ErrInvalidArgument = errors.New("debruijn: argument out of range")

	// ErrAlphabetTooLarge is returned when a sequence cannot be rendered
	// because the alphabet exceeds the printable symbol table.
	ErrAlphabetTooLarge = errors.New("debruijn: alphabet too large for printable rendering")

	// ErrNotPrintable is returned when parsing a string that contains a
	// character outside the printable symbol table.
	ErrNotPrintable = errors.New("debruijn: character outside printable symbol table")

	// ErrCorruptGraph reports an internal fault: a constructed graph that
	// is not k-regular, or a circuit draw that ran out of usable edges
	// before covering the graph. Seeing it means a bug in this package,
	// not bad input.
	ErrCorruptGraph = errors.New("debruijn: internal graph invariant violated")
)

// Graph is a de Bruijn graph over an alphabet of k symbols with words of
// length n as nodes. An edge runs from word A to word B exactly when A's
// suffix of length n-1 equals B's prefix of length n-1, which makes every
// node k-regular and the graph Eulerian.
//
// A Graph is not safe for concurrent use; the zero value is not usable,
// construct with New.
type Graph struct {
	k     int
	n     int
	words [][]int
	adj   [][]int
	edges int
	rng   *rand.Rand
}

// Option configures a Graph during New.
type Option func(*Graph)

// WithRand sets the random source used for circuit draws. The source is
// used as-is and must not be shared with other consumers.
func WithRand(rng *rand.Rand) Option {
	return func(g *Graph) { g.rng = rng }
}

// WithSeed derives a deterministic random source from seed, making every
// draw from the graph reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Graph) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	}
}

// New constructs the de Bruijn graph with k^n nodes and k^(n+1) edges.
// Both memory and construction time grow as O(k^(2n)); see the package
// documentation for the intended scale.
func New(k, n int, opts ...Option) (*Graph, error) {
	words, err := Words(k, n)
	if err != nil {
		return nil, err
	}

	g := &Graph{k: k, n: n, words: words}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g.adj = make([][]int, len(words))
	for i, from := range words {
		row := make([]int, len(words))
		for j, to := range words {
			if overlaps(from, to) {
				row[j] = 1
				g.edges++
			}
		}
		g.adj[i] = row
	}

	// Every node of a de Bruijn graph has out-degree exactly k. A violation
	// here means the overlap test is broken, not that the input is bad.
	for _, row := range g.adj {
		deg := 0
		for _, c := range row {
			deg += c
		}
		if deg != k {
			return nil, ErrCorruptGraph
		}
	}
	return g, nil
}

// overlaps reports whether an edge runs from word a to word b, i.e. whether
// a's suffix and b's prefix of length n-1 coincide.
func overlaps(a, b []int) bool {
	return slices.Equal(a[1:], b[:len(b)-1])
}

// K returns the alphabet size.
func (g *Graph) K() int { return g.k }

// Order returns the node word length n.
func (g *Graph) Order() int { return g.n }

// NodeCount returns the number of nodes, k^n.
func (g *Graph) NodeCount() int { return len(g.words) }

// EdgeCount returns the number of edges, k^(n+1).
func (g *Graph) EdgeCount() int { return g.edges }

// Word returns a copy of the word at node index i.
func (g *Graph) Word(i int) []int { return slices.Clone(g.words[i]) }

// HasEdge reports whether an edge runs from node i to node j.
func (g *Graph) HasEdge(i, j int) bool { return g.adj[i][j] == 1 }
