package study

import (
	"testing"

	apperrors "github.com/seqlab/counterseq/pkg/errors"
	"github.com/seqlab/counterseq/pkg/sequencer"
)

func seededDesign(seed uint64) *sequencer.Design {
	return &sequencer.Design{
		Name:   "color-shape",
		Window: 2,
		Fold:   1,
		Seed:   &seed,
		Append: "end",
		Factors: []sequencer.Factor{
			{Name: "color", Levels: []string{"red", "green"}},
			{Name: "shape", Levels: []string{"circle", "square"}},
		},
	}
}

func TestNewAdoptsDesignSeed(t *testing.T) {
	st, err := New(seededDesign(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if st.Seed != 42 {
		t.Errorf("Seed = %d, want 42", st.Seed)
	}
	if st.ID == "" {
		t.Error("study has no ID")
	}
	if st.Name != "color-shape" {
		t.Errorf("Name = %q", st.Name)
	}
	if st.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestNewDrawsSeedWhenAbsent(t *testing.T) {
	d := seededDesign(0)
	d.Seed = nil
	a, err := New(d)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(d)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.ID == b.ID {
		t.Error("two studies share an ID")
	}
	// A drawn seed of zero is possible but overwhelmingly unlikely twice.
	if a.Seed == 0 && b.Seed == 0 {
		t.Error("drawn seeds both zero")
	}
}

func TestNewCopiesDesign(t *testing.T) {
	d := seededDesign(42)
	st, err := New(d)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	d.Factors[0].Levels[0] = "mutated"
	if st.Design.Factors[0].Levels[0] != "red" {
		t.Fatal("study design aliases the caller's design")
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	d := seededDesign(42)
	d.Factors = nil
	if _, err := New(d); err == nil {
		t.Error("expected an error for a design without factors")
	}

	d = seededDesign(42)
	d.Name = "a/b"
	_, err := New(d)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestGenerateReproducible(t *testing.T) {
	st, err := New(seededDesign(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a, err := st.Generate("P001", 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := st.Generate("P002", 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Same index means same seed and same trials, whoever the participant.
	if a.Seed != b.Seed {
		t.Fatalf("seeds differ: %d vs %d", a.Seed, b.Seed)
	}
	if len(a.Trials) != len(b.Trials) {
		t.Fatalf("trial counts differ: %d vs %d", len(a.Trials), len(b.Trials))
	}
	for i := range a.Trials {
		if a.Trials[i].Symbol != b.Trials[i].Symbol {
			t.Fatalf("trial %d differs: %v vs %v", i, a.Trials[i], b.Trials[i])
		}
	}
	if a.ID == b.ID {
		t.Error("assignments share an ID")
	}
	if a.StudyID != st.ID || b.StudyID != st.ID {
		t.Error("assignment not linked to study")
	}
}

func TestGenerateBlockShape(t *testing.T) {
	st, err := New(seededDesign(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a, err := st.Generate("P001", 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// fold 1, window 2, k 4, append end: 16+1 trials.
	if len(a.Trials) != 17 {
		t.Fatalf("got %d trials, want 17", len(a.Trials))
	}
	counts := make(map[int]int)
	for _, tr := range a.Trials[:16] {
		counts[tr.Symbol]++
	}
	for symbol := range 4 {
		if counts[symbol] != 4 {
			t.Errorf("type %d occurs %d times in the core block, want 4", symbol, counts[symbol])
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	st, err := New(seededDesign(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := st.Generate("", 0); !apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("empty participant error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := st.Generate("P001", -1); !apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("negative index error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestDeriveSeed(t *testing.T) {
	// Distinct indices must not collide for a fixed study seed, and the
	// derivation must be a pure function.
	seen := make(map[uint64]uint64)
	for index := range uint64(1000) {
		s := DeriveSeed(42, index)
		if prev, dup := seen[s]; dup {
			t.Fatalf("indices %d and %d collide on seed %d", prev, index, s)
		}
		seen[s] = index
		if DeriveSeed(42, index) != s {
			t.Fatalf("DeriveSeed not deterministic at index %d", index)
		}
	}
	if DeriveSeed(1, 0) == DeriveSeed(2, 0) {
		t.Error("distinct study seeds collide at index 0")
	}
}
