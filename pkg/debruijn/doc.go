// Package debruijn builds de Bruijn graphs and draws randomized f-fold
// de Bruijn sequences from them.
//
// # Overview
//
// A de Bruijn sequence over k symbols is a cyclic sequence in which every
// possible word of a given length appears exactly once, or exactly f times
// in the f-fold generalization. Counterseq uses these sequences to order
// experiment trials so that every transition between trial types occurs
// equally often, removing sequence-order confounds (counterbalancing).
//
// The construction is the classical one: the nodes of [Graph] are all k^n
// words of length n, with an edge from A to B whenever A's suffix of length
// n-1 equals B's prefix of length n-1. Every node then has in-degree and
// out-degree k, so the graph always admits an Eulerian circuit, and reading
// one new symbol per circuit step yields a sequence in which every word of
// length n+1 appears exactly once per edge copy.
//
// # Basic Usage
//
// Build a graph with [New], then draw sequences from it:
//
//	g, err := debruijn.New(2, 1, debruijn.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	seq, err := g.Sequence(1) // e.g. [0 0 1 1]
//	txt, err := g.Text(1)     // e.g. "0011"
//
// One graph can serve many draws: every call to [Graph.EulerCircuit],
// [Graph.Sequence], or [Graph.Text] works on its own copy of the edge
// capacities. Draws consume the graph's random stream, so successive calls
// produce different sequences; inject a seeded source with [WithSeed] or
// [WithRand] for reproducible output.
//
// # Randomization
//
// Circuits are found with Hierholzer's algorithm, randomized at every choice
// point and generalized to f parallel copies of each edge. Every draw yields
// a valid circuit, but the compounded local choices do not weight all
// Eulerian circuits equally, so callers must not treat the output as a
// uniform sample of that space.
//
// # Scale
//
// The adjacency structure is a dense node-by-node matrix: O(k^(2n)) memory
// and construction time. Experiment designs use small alphabets and short
// windows, and the dense form keeps the overlap test and capacity
// bookkeeping trivial. Graphs beyond a few thousand nodes are not practical
// with this package.
package debruijn
