package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seqlab/counterseq/pkg/debruijn"
	apperrors "github.com/seqlab/counterseq/pkg/errors"
	"github.com/seqlab/counterseq/pkg/sequencer"
	"github.com/seqlab/counterseq/pkg/study"
)

// maxSequenceNodes bounds ad-hoc generation requests. The adjacency matrix
// is dense, so memory grows with the square of the node count; 1024 nodes
// keeps a single request under a few dozen megabytes.
const maxSequenceNodes = 1024

type sequenceRequest struct {
	K    int     `json:"k"`
	N    int     `json:"n"`
	Fold int     `json:"fold,omitempty"`
	Seed *uint64 `json:"seed,omitempty"`
}

type sequenceResponse struct {
	K        int    `json:"k"`
	N        int    `json:"n"`
	Fold     int    `json:"fold"`
	Length   int    `json:"length"`
	Sequence []int  `json:"sequence"`
	Text     string `json:"text,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSequence generates one raw de Bruijn sequence of order n over
// k symbols, the same convention the CLI uses: the graph walked has words of
// length n-1 and the sequence has length fold*k^n. Alphabets past the
// printable range still generate; the text field is simply omitted with a
// warning.
func (s *Server) handleCreateSequence(w http.ResponseWriter, r *http.Request) {
	var req sequenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Fold == 0 {
		req.Fold = 1
	}
	if req.N < 2 {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidArgument,
			"order must be at least 2, got %d", req.N))
		return
	}

	if nodes, ok := graphNodes(req.K, req.N-1); !ok {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidArgument,
			"graph of %d nodes exceeds the per-request limit of %d", nodes, maxSequenceNodes))
		return
	}

	opts := []debruijn.Option{}
	if req.Seed != nil {
		opts = append(opts, debruijn.WithSeed(*req.Seed))
	}
	g, err := debruijn.New(req.K, req.N-1, opts...)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	seq, err := g.Sequence(req.Fold)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := sequenceResponse{
		K:        req.K,
		N:        req.N,
		Fold:     req.Fold,
		Length:   len(seq),
		Sequence: seq,
	}
	if req.K <= debruijn.MaxPrintableAlphabet {
		if resp.Text, err = debruijn.Format(seq); err != nil {
			s.respondError(w, r, err)
			return
		}
	} else {
		resp.Warning = fmt.Sprintf("alphabet size %d exceeds the %d printable symbols; text omitted",
			req.K, debruijn.MaxPrintableAlphabet)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// graphNodes computes k^n, reporting false once the count passes
// maxSequenceNodes. Non-positive k and n fall through to the constructor's
// own validation.
func graphNodes(k, n int) (int, bool) {
	if k < 1 || n < 1 {
		return 0, true
	}
	nodes := 1
	for i := 0; i < n; i++ {
		nodes *= k
		if nodes > maxSequenceNodes {
			return nodes, false
		}
	}
	return nodes, true
}

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidArgument, err, "reading request body"))
		return
	}

	design, err := sequencer.ParseDesignJSON(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	st, err := study.New(design)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.PutStudy(r.Context(), st); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, st)
}

func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := s.store.ListStudies(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if studies == nil {
		studies = []*study.Study{}
	}
	s.respondJSON(w, http.StatusOK, studies)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetStudy(r.Context(), chi.URLParam(r, "studyID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStudy(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteStudy(r.Context(), chi.URLParam(r, "studyID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignmentRequest struct {
	Participant string `json:"participant"`
}

// handleCreateAssignment generates the next assignment for a study. The
// index comes from the store's assignment count, so blocks are handed out
// in registration order and every one can be regenerated later.
func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Participant) == "" {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidArgument, "participant is required"))
		return
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	studyID := chi.URLParam(r, "studyID")
	st, err := s.store.GetStudy(r.Context(), studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	index, err := s.store.CountAssignments(r.Context(), studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	a, err := st.Generate(req.Participant, index)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.PutAssignment(r.Context(), a); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")
	if _, err := s.store.GetStudy(r.Context(), studyID); err != nil {
		s.respondError(w, r, err)
		return
	}
	assignments, err := s.store.ListAssignments(r.Context(), studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if assignments == nil {
		assignments = []*study.Assignment{}
	}
	s.respondJSON(w, http.StatusOK, assignments)
}
