// Package sequencer turns factorial experiment designs into counterbalanced
// trial blocks.
//
// # Overview
//
// An experiment design names one or more factors, each with a fixed set of
// levels. The cross product of all levels yields the trial types; a
// [Sequencer] assigns each type a symbol and orders a block of trials as a
// de Bruijn sequence over those symbols, so that within a block every
// possible run of window consecutive trial types occurs equally often.
// With a window of 2 this means every ordered pair of trial types, including
// repeats, appears the same number of times.
//
// # Basic Usage
//
//	s, err := sequencer.New(2, []sequencer.Factor{
//	    {Name: "color", Levels: []string{"red", "green"}},
//	    {Name: "shape", Levels: []string{"circle", "square"}},
//	}, sequencer.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	block, err := s.Block(1, sequencer.AppendNone)
//
// The block above holds 16 trials: each of the 4 trial types occurs 4 times
// and each ordered pair of types exactly once, read cyclically.
//
// # Design Files
//
// Designs can be described in TOML and loaded with [LoadDesign]:
//
//	name   = "color-shape"
//	window = 2
//	fold   = 1
//	seed   = 42
//	append = "end"
//
//	[[factors]]
//	name   = "color"
//	levels = ["red", "green"]
//
//	[[factors]]
//	name   = "shape"
//	levels = ["circle", "square"]
//
// # Boundary Trials
//
// A de Bruijn block balances runs cyclically: some runs only occur across
// the wrap from the last trial back to the first. The [Append] modes
// materialize that wrap by repeating window-1 trials at one end of the
// block, so every run also appears linearly. Sessions that present the
// block once, start to end, usually want [AppendEnd].
package sequencer
