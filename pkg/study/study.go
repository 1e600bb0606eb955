// Package study models experiment studies and per-participant assignments.
//
// A study freezes one design together with a base seed. Every assignment
// handed to a participant derives its own seed from the study seed and the
// assignment index, so any block ever generated can be regenerated later
// from the study record alone: no per-assignment randomness needs to be
// stored to audit a session.
//
// # Usage
//
//	st, err := study.New(design)
//	if err != nil {
//	    return err
//	}
//	first, err := st.Generate("P001", 0)
//	second, err := st.Generate("P002", 1)
package study

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/seqlab/counterseq/pkg/errors"
	"github.com/seqlab/counterseq/pkg/sequencer"
)

// Study freezes one experiment design under a stable identity and base seed.
type Study struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Design    sequencer.Design `json:"design"`
	Seed      uint64           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
}

// Assignment is one participant's generated trial block within a study.
type Assignment struct {
	ID          string            `json:"id"`
	StudyID     string            `json:"study_id"`
	Participant string            `json:"participant"`
	Index       int               `json:"index"`
	Seed        uint64            `json:"seed"`
	Trials      []sequencer.Trial `json:"trials"`
	CreatedAt   time.Time         `json:"created_at"`
}

// New registers a design as a study: it validates the design, adopts its
// seed or draws a fresh one, and stamps identity and creation time. The
// design is copied, so later changes to the caller's value do not reach
// the study record.
func New(design *sequencer.Design) (*Study, error) {
	if err := design.Validate(); err != nil {
		return nil, err
	}
	if err := apperrors.ValidateStudyName(design.Name); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if design.Seed != nil {
		seed = *design.Seed
	}
	return &Study{
		ID:        uuid.NewString(),
		Name:      design.Name,
		Design:    cloneDesign(design),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Generate draws the assignment at the given index for a participant. The
// draw is seeded by DeriveSeed(study seed, index), which makes it
// reproducible without storing anything beyond the study record and the
// index.
func (s *Study) Generate(participant string, index int) (*Assignment, error) {
	if err := apperrors.ValidateParticipant(participant); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidArgument, "assignment index %d is negative", index)
	}

	seed := DeriveSeed(s.Seed, uint64(index))
	seq, err := s.Design.Sequencer(sequencer.WithSeed(seed))
	if err != nil {
		return nil, err
	}
	mode, err := s.Design.AppendMode()
	if err != nil {
		return nil, err
	}
	trials, err := seq.Block(s.Design.Fold, mode)
	if err != nil {
		return nil, err
	}
	return &Assignment{
		ID:          uuid.NewString(),
		StudyID:     s.ID,
		Participant: participant,
		Index:       index,
		Seed:        seed,
		Trials:      trials,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Clone returns a deep copy of the study record.
func (s *Study) Clone() *Study {
	cp := *s
	cp.Design = cloneDesign(&s.Design)
	return &cp
}

// Clone returns a deep copy of the assignment record.
func (a *Assignment) Clone() *Assignment {
	cp := *a
	cp.Trials = make([]sequencer.Trial, len(a.Trials))
	for i, tr := range a.Trials {
		cp.Trials[i] = sequencer.Trial{Symbol: tr.Symbol, Levels: slices.Clone(tr.Levels)}
	}
	return &cp
}

// DeriveSeed mixes a study seed and an assignment index into that
// assignment's draw seed. The mix is a SplitMix64-style finalizer, so
// consecutive indices yield uncorrelated seeds while every assignment stays
// recomputable from the study record.
func DeriveSeed(studySeed, index uint64) uint64 {
	x := studySeed ^ (index + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func cloneDesign(d *sequencer.Design) sequencer.Design {
	out := *d
	if d.Seed != nil {
		seed := *d.Seed
		out.Seed = &seed
	}
	out.Factors = make([]sequencer.Factor, len(d.Factors))
	for i, f := range d.Factors {
		out.Factors[i] = sequencer.Factor{Name: f.Name, Levels: slices.Clone(f.Levels)}
	}
	return out
}
