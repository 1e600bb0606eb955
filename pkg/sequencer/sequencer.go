package sequencer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/seqlab/counterseq/pkg/debruijn"
)

// Common errors returned by sequencer construction and block generation.
var (
	// ErrWindowTooSmall is returned when the balance window is below 2.
	// A window of 1 would balance nothing beyond plain symbol counts.
	ErrWindowTooSmall = errors.New("sequencer: window must be at least 2")

	// ErrNoFactors is returned when a design names no factors at all.
	ErrNoFactors = errors.New("sequencer: at least one factor required")

	// ErrEmptyFactor is returned when a factor has no levels.
	ErrEmptyFactor = errors.New("sequencer: factor has no levels")

	// ErrUnknownSymbol is returned when a symbol falls outside the trial
	// type range.
	ErrUnknownSymbol = errors.New("sequencer: symbol outside trial type range")

	// ErrInvalidAppend is returned for an append mode this package does
	// not know.
	ErrInvalidAppend = errors.New("sequencer: unknown append mode")
)

// Factor is one independent variable of a design with its named levels.
type Factor struct {
	Name   string   `toml:"name" json:"name"`
	Levels []string `toml:"levels" json:"levels"`
}

// Trial is a single trial slot in a block: one trial type, identified by
// its symbol and spelled out as one level per factor in factor order.
type Trial struct {
	Symbol int      `json:"symbol"`
	Levels []string `json:"levels"`
}

// String renders the trial's levels joined by "/".
func (t Trial) String() string { return strings.Join(t.Levels, "/") }

// Append selects how a block handles the cyclic wraparound.
type Append int

const (
	// AppendNone leaves the block as the bare cyclic sequence.
	AppendNone Append = iota

	// AppendStart repeats the final window-1 trials before the block.
	AppendStart

	// AppendEnd repeats the first window-1 trials after the block.
	AppendEnd
)

// String returns the mode's design-file spelling.
func (a Append) String() string {
	switch a {
	case AppendNone:
		return "none"
	case AppendStart:
		return "start"
	case AppendEnd:
		return "end"
	default:
		return fmt.Sprintf("append(%d)", int(a))
	}
}

// ParseAppend maps a design-file spelling to its Append mode. The empty
// string counts as "none".
func ParseAppend(s string) (Append, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AppendNone, nil
	case "start":
		return AppendStart, nil
	case "end":
		return AppendEnd, nil
	default:
		return AppendNone, fmt.Errorf("%w: %q", ErrInvalidAppend, s)
	}
}

// Sequencer draws counterbalanced trial blocks for one design. It is not
// safe for concurrent use; the zero value is not usable, construct with
// New.
type Sequencer struct {
	window  int
	factors []Factor
	trials  []Trial
	graph   *debruijn.Graph
}

// Option configures a Sequencer during New.
type Option func(*settings)

type settings struct {
	graphOpts []debruijn.Option
}

// WithSeed derives a deterministic random source from seed, making every
// block draw reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.graphOpts = append(s.graphOpts, debruijn.WithSeed(seed))
	}
}

// WithRand sets the random source used for block draws.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		s.graphOpts = append(s.graphOpts, debruijn.WithRand(rng))
	}
}

// New builds a sequencer that balances every run of window consecutive
// trials across the cross product of the given factors. The trial types are
// enumerated in cross-product order with the last factor varying fastest,
// and the balance structure is a de Bruijn graph of word length window-1
// over one symbol per type.
func New(window int, factors []Factor, opts ...Option) (*Sequencer, error) {
	if window < 2 {
		return nil, ErrWindowTooSmall
	}
	if len(factors) == 0 {
		return nil, ErrNoFactors
	}
	for _, f := range factors {
		if len(f.Levels) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyFactor, f.Name)
		}
	}

	var st settings
	for _, opt := range opts {
		opt(&st)
	}

	kept := make([]Factor, len(factors))
	for i, f := range factors {
		kept[i] = Factor{Name: f.Name, Levels: slices.Clone(f.Levels)}
	}
	trials := enumerate(kept)

	graph, err := debruijn.New(len(trials), window-1, st.graphOpts...)
	if err != nil {
		return nil, err
	}
	return &Sequencer{window: window, factors: kept, trials: trials, graph: graph}, nil
}

// enumerate lists the cross product of all factor levels, last factor
// varying fastest, one Trial per combination.
func enumerate(factors []Factor) []Trial {
	k := 1
	for _, f := range factors {
		k *= len(f.Levels)
	}
	trials := make([]Trial, k)
	for i := range k {
		levels := make([]string, len(factors))
		rest := i
		for pos := len(factors) - 1; pos >= 0; pos-- {
			f := factors[pos]
			levels[pos] = f.Levels[rest%len(f.Levels)]
			rest /= len(f.Levels)
		}
		trials[i] = Trial{Symbol: i, Levels: levels}
	}
	return trials
}

// Window returns the balance window.
func (s *Sequencer) Window() int { return s.window }

// K returns the number of trial types, the product of all level counts.
func (s *Sequencer) K() int { return len(s.trials) }

// Factors returns a copy of the design's factors.
func (s *Sequencer) Factors() []Factor {
	out := make([]Factor, len(s.factors))
	for i, f := range s.factors {
		out[i] = Factor{Name: f.Name, Levels: slices.Clone(f.Levels)}
	}
	return out
}

// Trials returns a copy of the trial type enumeration in symbol order.
func (s *Sequencer) Trials() []Trial {
	out := make([]Trial, len(s.trials))
	for i := range s.trials {
		out[i] = s.trialAt(i)
	}
	return out
}

// Trial returns the trial type behind a symbol.
func (s *Sequencer) Trial(symbol int) (Trial, error) {
	if symbol < 0 || symbol >= len(s.trials) {
		return Trial{}, fmt.Errorf("%w: %d", ErrUnknownSymbol, symbol)
	}
	return s.trialAt(symbol), nil
}

func (s *Sequencer) trialAt(symbol int) Trial {
	return Trial{Symbol: symbol, Levels: slices.Clone(s.trials[symbol].Levels)}
}

// Graph exposes the underlying de Bruijn graph, mainly for visualization.
// Draws from it consume the same random stream as Block.
func (s *Sequencer) Graph() *debruijn.Graph { return s.graph }

// Symbols draws one block as raw symbols: a generalized de Bruijn sequence
// of length fold*k^window over the trial type symbols, extended by the
// chosen append mode.
func (s *Sequencer) Symbols(fold int, app Append) ([]int, error) {
	seq, err := s.graph.Sequence(fold)
	if err != nil {
		return nil, err
	}
	wrap := min(s.window-1, len(seq))
	switch app {
	case AppendNone:
	case AppendEnd:
		seq = append(seq, seq[:wrap]...)
	case AppendStart:
		head := slices.Clone(seq[len(seq)-wrap:])
		seq = append(head, seq...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAppend, app)
	}
	return seq, nil
}

// Block draws one counterbalanced block of trials. Every run of window
// consecutive trial types occurs exactly fold times, cyclically for
// AppendNone and linearly once the wrap is materialized by AppendStart or
// AppendEnd.
func (s *Sequencer) Block(fold int, app Append) ([]Trial, error) {
	symbols, err := s.Symbols(fold, app)
	if err != nil {
		return nil, err
	}
	block := make([]Trial, len(symbols))
	for i, sym := range symbols {
		block[i] = s.trialAt(sym)
	}
	return block, nil
}
