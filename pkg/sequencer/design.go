package sequencer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidDesign is returned when a design file is structurally sound
// TOML but describes an unusable design.
var ErrInvalidDesign = errors.New("sequencer: invalid design")

// Design is the TOML description of an experiment design. Window, Fold and
// Append are optional in the file and default to 2, 1 and "none".
type Design struct {
	Name    string   `toml:"name" json:"name"`
	Window  int      `toml:"window" json:"window"`
	Fold    int      `toml:"fold" json:"fold"`
	Seed    *uint64  `toml:"seed" json:"seed,omitempty"`
	Append  string   `toml:"append" json:"append,omitempty"`
	Factors []Factor `toml:"factors" json:"factors"`
}

// LoadDesign reads, parses and validates a TOML design file.
func LoadDesign(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design: %w", err)
	}
	d, err := ParseDesign(data)
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", path, err)
	}
	return d, nil
}

// ParseDesign parses and validates a TOML design document.
func ParseDesign(data []byte) (*Design, error) {
	var d Design
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing design: %w", err)
	}
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseDesignJSON parses and validates a JSON design document. The same
// defaults apply as for TOML files, so API clients may omit window, fold
// and append.
func ParseDesignJSON(data []byte) (*Design, error) {
	var d Design
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing design: %w", err)
	}
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Design) applyDefaults() {
	if d.Window == 0 {
		d.Window = 2
	}
	if d.Fold == 0 {
		d.Fold = 1
	}
	if d.Append == "" {
		d.Append = AppendNone.String()
	}
}

// Validate checks the design against the same rules New enforces, plus the
// file-level ones: a name, a known append spelling, unique factor names and
// unique levels within each factor.
func (d *Design) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDesign)
	}
	if d.Window < 2 {
		return ErrWindowTooSmall
	}
	if d.Fold < 1 {
		return fmt.Errorf("%w: fold must be at least 1", ErrInvalidDesign)
	}
	if _, err := ParseAppend(d.Append); err != nil {
		return err
	}
	if len(d.Factors) == 0 {
		return ErrNoFactors
	}
	names := make(map[string]bool)
	for _, f := range d.Factors {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: factor without a name", ErrInvalidDesign)
		}
		if names[name] {
			return fmt.Errorf("%w: duplicate factor %q", ErrInvalidDesign, name)
		}
		names[name] = true
		if len(f.Levels) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyFactor, f.Name)
		}
		levels := make(map[string]bool)
		for _, lv := range f.Levels {
			if levels[lv] {
				return fmt.Errorf("%w: factor %q repeats level %q", ErrInvalidDesign, name, lv)
			}
			levels[lv] = true
		}
	}
	return nil
}

// K returns the number of trial types the design spans.
func (d *Design) K() int {
	k := 1
	for _, f := range d.Factors {
		k *= len(f.Levels)
	}
	return k
}

// BlockLength returns the number of trials one block of this design holds,
// append trials included.
func (d *Design) BlockLength() int {
	core := d.Fold
	for range d.Window {
		core *= d.K()
	}
	mode, err := ParseAppend(d.Append)
	if err != nil || mode == AppendNone {
		return core
	}
	return core + min(d.Window-1, core)
}

// AppendMode returns the design's parsed append mode.
func (d *Design) AppendMode() (Append, error) {
	return ParseAppend(d.Append)
}

// Sequencer builds the sequencer the design describes. A design seed is
// applied before the given options, so callers can still override the
// random source.
func (d *Design) Sequencer(opts ...Option) (*Sequencer, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+1)
	if d.Seed != nil {
		all = append(all, WithSeed(*d.Seed))
	}
	all = append(all, opts...)
	return New(d.Window, d.Factors, all...)
}
