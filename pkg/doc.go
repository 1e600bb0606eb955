// Package pkg provides the core libraries for counterseq sequence generation.
//
// # Overview
//
// Counterseq builds counterbalanced trial sequences for behavioral
// experiments: pseudorandom orderings in which every run of consecutive
// trial types occurs equally often, so sequence order cannot confound the
// measured effects. The pkg directory is organized into three main areas:
//
//  1. Generation - de Bruijn graphs and trial sequencing ([debruijn], [sequencer])
//  2. Studies - experiment records and persistence ([study], [store])
//  3. Surfaces - visualization, caching, shared errors ([dot], [cache], [errors])
//
// # Architecture
//
// The typical data flow through counterseq:
//
//	Design file (factors, window, fold)
//	         ↓
//	    [sequencer] package (cross factors into trial types)
//	         ↓
//	    [debruijn] package (graph + randomized Euler circuit)
//	         ↓
//	    [sequencer] package (decode symbols into trials)
//	         ↓
//	    trial block / printable sequence / study assignment
//
// # Quick Start
//
// Draw one counterbalanced block for a 2x2 factorial design:
//
//	import "github.com/seqlab/counterseq/pkg/sequencer"
//
//	s, err := sequencer.New(2, []sequencer.Factor{
//	    {Name: "cue", Levels: []string{"valid", "invalid"}},
//	    {Name: "side", Levels: []string{"left", "right"}},
//	})
//	if err != nil {
//	    return err
//	}
//	block, err := s.Block(1, sequencer.AppendEnd)
//
// Or generate a raw de Bruijn sequence directly:
//
//	g, err := debruijn.New(2, 3, debruijn.WithSeed(42))
//	txt, err := g.Text(1) // every 4-symbol window exactly once, cyclically
//
// # Main Packages
//
// [debruijn] - de Bruijn graph construction and randomized f-fold Eulerian
// circuits, the algorithmic core. Also owns the printable symbol table used
// everywhere sequences become text.
//
// [sequencer] - factorial designs: factors crossed into trial types, blocks
// balanced over a configurable window, TOML design files.
//
// [study] - studies freeze a design under a base seed; assignments derive
// per-participant seeds so every generated block can be reproduced from the
// study record alone.
//
// [store] - persistence for studies and assignments with memory, Redis, and
// MongoDB backends behind one interface.
//
// [dot] - Graphviz DOT serialization and in-process SVG/PNG rendering of
// de Bruijn graphs.
//
// [cache] - byte-level render cache used by the CLI graph command, plus the
// retry helpers shared with the store dialing paths.
//
// [errors] - structured error codes shared by the CLI and the HTTP API.
//
// [buildinfo] - ldflags-injected version information.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/debruijn/... # Specific package
//	go test -run Example       # Examples only
//
// [debruijn]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/debruijn
// [sequencer]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/sequencer
// [study]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/study
// [store]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/store
// [dot]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/dot
// [cache]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/cache
// [errors]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/seqlab/counterseq/pkg/buildinfo
package pkg
