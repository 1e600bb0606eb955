package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/seqlab/counterseq/pkg/store"
	"github.com/seqlab/counterseq/pkg/study"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(store.NewMemory(), WithLogger(log.New(io.Discard)))
}

// do runs one request against the server and returns the recorder.
func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// errorCode extracts the code field from an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, rec, &env)
	return env.Error.Code
}

func colorDesign(seed uint64) map[string]any {
	return map[string]any{
		"name":   "colors",
		"window": 2,
		"fold":   1,
		"seed":   seed,
		"factors": []map[string]any{
			{"name": "color", "levels": []string{"red", "green"}},
		},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestCreateSequence(t *testing.T) {
	s := newTestServer(t)
	// Order 4 over 2 symbols: 2^4 symbols, every 4-window once cyclically.
	req := map[string]any{"k": 2, "n": 4, "seed": 7}

	rec := do(t, s, http.MethodPost, "/v1/sequences", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp sequenceResponse
	decode(t, rec, &resp)
	if resp.Fold != 1 {
		t.Errorf("fold should default to 1, got %d", resp.Fold)
	}
	if resp.Length != 16 || len(resp.Sequence) != 16 {
		t.Errorf("length = %d, sequence %d symbols, want 16", resp.Length, len(resp.Sequence))
	}
	if len(resp.Text) != 16 {
		t.Errorf("text = %q, want 16 characters", resp.Text)
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning %q", resp.Warning)
	}

	counts := map[int]int{}
	for _, sym := range resp.Sequence {
		counts[sym]++
	}
	if counts[0] != 8 || counts[1] != 8 {
		t.Errorf("symbol counts = %v, want 8 of each", counts)
	}

	// The same seed replays the same sequence.
	rec2 := do(t, s, http.MethodPost, "/v1/sequences", req)
	var resp2 sequenceResponse
	decode(t, rec2, &resp2)
	if resp.Text != resp2.Text {
		t.Errorf("seeded draws differ: %q vs %q", resp.Text, resp2.Text)
	}
}

func TestCreateSequenceUnprintable(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/sequences", map[string]any{"k": 63, "n": 2, "seed": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp sequenceResponse
	decode(t, rec, &resp)
	if resp.Text != "" {
		t.Error("text should be omitted past the printable range")
	}
	if resp.Warning == "" {
		t.Error("warning should explain the omitted text")
	}
	if resp.Length != 63*63 {
		t.Errorf("length = %d, want %d", resp.Length, 63*63)
	}
}

func TestCreateSequenceInvalid(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"zero alphabet", map[string]any{"k": 0, "n": 2}, "INVALID_ARGUMENT"},
		{"zero order", map[string]any{"k": 2, "n": 0}, "INVALID_ARGUMENT"},
		{"order one", map[string]any{"k": 2, "n": 1}, "INVALID_ARGUMENT"},
		{"negative fold", map[string]any{"k": 2, "n": 2, "fold": -1}, "INVALID_ARGUMENT"},
		{"too many nodes", map[string]any{"k": 2, "n": 12}, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/sequences", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sequences", bytes.NewBufferString("{broken")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: status = %d, want 400", rec.Code)
	}
}

func TestStudyLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/studies", colorDesign(42))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created study.Study
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created study should have an ID")
	}
	if created.Seed != 42 {
		t.Errorf("seed = %d, want 42", created.Seed)
	}
	if created.Design.K() != 2 {
		t.Errorf("design K = %d, want 2", created.Design.K())
	}

	rec = do(t, s, http.MethodGet, "/v1/studies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var listed []study.Study
	decode(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("list = %d studies, want the created one", len(listed))
	}

	rec = do(t, s, http.MethodGet, "/v1/studies/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var fetched study.Study
	decode(t, rec, &fetched)
	if fetched.Name != "colors" {
		t.Errorf("fetched name = %q", fetched.Name)
	}

	rec = do(t, s, http.MethodDelete, "/v1/studies/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/v1/studies/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", rec.Code)
	}
	if got := errorCode(t, rec); got != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", got)
	}

	rec = do(t, s, http.MethodDelete, "/v1/studies/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestCreateStudyInvalid(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{
			"window": 2,
			"factors": []map[string]any{
				{"name": "color", "levels": []string{"red", "green"}},
			},
		}},
		{"no factors", map[string]any{"name": "empty", "window": 2}},
		{"empty levels", map[string]any{
			"name":    "hollow",
			"factors": []map[string]any{{"name": "color", "levels": []string{}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/studies", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if got := errorCode(t, rec); got != "INVALID_DESIGN" {
				t.Errorf("code = %q, want INVALID_DESIGN", got)
			}
		})
	}
}

func TestAssignments(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/studies", colorDesign(42))
	var st study.Study
	decode(t, rec, &st)

	base := "/v1/studies/" + st.ID + "/assignments"

	rec = do(t, s, http.MethodPost, base, map[string]any{"participant": "P001"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first assignment: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var first study.Assignment
	decode(t, rec, &first)
	if first.Index != 0 {
		t.Errorf("first index = %d, want 0", first.Index)
	}
	if first.Participant != "P001" {
		t.Errorf("participant = %q", first.Participant)
	}
	if len(first.Trials) != 4 {
		t.Errorf("block = %d trials, want 4", len(first.Trials))
	}
	if want := study.DeriveSeed(42, 0); first.Seed != want {
		t.Errorf("assignment seed = %d, want DeriveSeed(42,0) = %d", first.Seed, want)
	}

	rec = do(t, s, http.MethodPost, base, map[string]any{"participant": "P002"})
	var second study.Assignment
	decode(t, rec, &second)
	if second.Index != 1 {
		t.Errorf("second index = %d, want 1", second.Index)
	}

	rec = do(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list assignments: status = %d", rec.Code)
	}
	var listed []study.Assignment
	decode(t, rec, &listed)
	if len(listed) != 2 || listed[0].Index != 0 || listed[1].Index != 1 {
		t.Errorf("listed assignments out of order: %+v", listed)
	}

	// Deleting the study drops its assignments with it.
	do(t, s, http.MethodDelete, "/v1/studies/"+st.ID, nil)
	rec = do(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("assignments after delete: status = %d, want 404", rec.Code)
	}
}

func TestAssignmentValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/studies", colorDesign(1))
	var st study.Study
	decode(t, rec, &st)

	rec = do(t, s, http.MethodPost, "/v1/studies/"+st.ID+"/assignments", map[string]any{"participant": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank participant: status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/v1/studies/no-such-study/assignments", map[string]any{"participant": "P001"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown study: status = %d, want 404", rec.Code)
	}
}

func TestAssignmentReproducibility(t *testing.T) {
	// Two servers with the same seeded design hand out identical block
	// contents for the same index, even though record IDs differ.
	s1 := newTestServer(t)
	s2 := newTestServer(t)

	var st1, st2 study.Study
	decode(t, do(t, s1, http.MethodPost, "/v1/studies", colorDesign(99)), &st1)
	decode(t, do(t, s2, http.MethodPost, "/v1/studies", colorDesign(99)), &st2)

	var a1, a2 study.Assignment
	decode(t, do(t, s1, http.MethodPost, "/v1/studies/"+st1.ID+"/assignments", map[string]any{"participant": "A"}), &a1)
	decode(t, do(t, s2, http.MethodPost, "/v1/studies/"+st2.ID+"/assignments", map[string]any{"participant": "B"}), &a2)

	if a1.Seed != a2.Seed {
		t.Fatalf("derived seeds differ: %d vs %d", a1.Seed, a2.Seed)
	}
	if len(a1.Trials) != len(a2.Trials) {
		t.Fatalf("block lengths differ: %d vs %d", len(a1.Trials), len(a2.Trials))
	}
	for i := range a1.Trials {
		if a1.Trials[i].Symbol != a2.Trials[i].Symbol {
			t.Fatalf("trial %d differs: %d vs %d", i, a1.Trials[i].Symbol, a2.Trials[i].Symbol)
		}
	}
	if a1.ID == a2.ID {
		t.Error("assignment IDs should be unique")
	}
}
