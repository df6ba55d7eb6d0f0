package logview

import (
	"errors"
	"testing"
)

// sampleReport is a run with one failing suite chain and one passing
// test, plus messages at several severities.
const sampleReport = `{
  "root": {
    "id": "s1", "type": "suite", "name": "Root Suite", "status": "FAIL",
    "children": [
      {
        "id": "t1", "type": "test", "name": "Failing Test", "status": "FAIL",
        "children": [
          {
            "id": "k1", "type": "keyword", "name": "Failing Keyword", "status": "FAIL",
            "children": [
              {"id": "m1", "type": "message", "level": "TRACE", "text": "entering"},
              {"id": "m2", "type": "message", "level": "INFO", "text": "step detail"},
              {"id": "m3", "type": "message", "level": "WARN", "text": "deprecated keyword"},
              {"id": "m4", "type": "message", "level": "FAIL", "text": "assertion failed"}
            ]
          },
          {
            "id": "k2", "type": "keyword", "name": "Teardown", "status": "PASS",
            "children": [
              {"id": "m5", "type": "message", "level": "DEBUG", "text": "cleanup"}
            ]
          }
        ]
      },
      {
        "id": "t2", "type": "test", "name": "Passing Test", "status": "PASS",
        "children": [
          {"id": "k3", "type": "keyword", "name": "Fine Keyword", "status": "PASS",
           "children": [{"id": "m6", "type": "message", "level": "INFO", "text": "ok"}]}
        ]
      },
      {"id": "t3", "type": "test", "name": "Skipped Test", "status": "SKIP",
       "children": [{"id": "k4", "type": "keyword", "name": "Skipped Keyword", "status": "FAIL",
                     "children": [{"id": "m7", "type": "message", "level": "FAIL", "text": "not run"}]}]}
    ]
  }
}`

func newTestModel(t *testing.T) *Model {
	t.Helper()
	src, err := NewReportSource([]byte(sampleReport))
	if err != nil {
		t.Fatalf("NewReportSource() error = %v", err)
	}
	m, err := NewModel(src)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func mustNode(t *testing.T, m *Model, id string) *Node {
	t.Helper()
	n, ok := m.Lookup(id)
	if !ok {
		t.Fatalf("node %q not loaded", id)
	}
	return n
}

func visibleIDs(m *Model) []string {
	var ids []string
	for _, r := range m.Rows() {
		ids = append(ids, r.Node.ID)
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, got := range ids {
		if got == id {
			return true
		}
	}
	return false
}

func TestModel_RootStartsExpandedChildrenCollapsed(t *testing.T) {
	m := newTestModel(t)

	ids := visibleIDs(m)
	want := []string{"s1", "t1", "t2", "t3"}
	if len(ids) != len(want) {
		t.Fatalf("visible = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("visible[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestModel_ToggleLoadsLazilyAndIsIdempotent(t *testing.T) {
	m := newTestModel(t)

	if _, ok := m.Lookup("k1"); ok {
		t.Fatal("grandchild loaded before first expansion")
	}

	if err := m.Toggle("t1"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !containsID(visibleIDs(m), "k1") {
		t.Fatal("children not visible after expand")
	}

	// Double toggle returns to the initial visible set.
	before := visibleIDs(m)
	if err := m.Toggle("t1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Toggle("t1"); err != nil {
		t.Fatal(err)
	}
	after := visibleIDs(m)
	if len(before) != len(after) {
		t.Fatalf("double toggle changed visibility: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("row %d: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestModel_ExpandFailedFollowsFailChain(t *testing.T) {
	m := newTestModel(t)

	m.ExpandFailed("s1")
	m.Drain()

	// The FAIL chain s1 -> t1 -> k1 is open.
	for _, id := range []string{"t1", "k1"} {
		if !mustNode(t, m, id).Expanded() {
			t.Errorf("node %s not expanded by the failed pass", id)
		}
	}

	// Recursion stopped at the passing branches.
	if mustNode(t, m, "k2").Expanded() {
		t.Error("passing keyword expanded past the failure boundary")
	}
	if mustNode(t, m, "t2").Expanded() {
		t.Error("passing test expanded by the failed pass")
	}

	// SKIP qualifies for test nodes, and its failing child continues the
	// chain.
	if !mustNode(t, m, "t3").Expanded() {
		t.Error("skipped test not expanded")
	}
	if !mustNode(t, m, "k4").Expanded() {
		t.Error("failing keyword under skipped test not expanded")
	}
}

func TestModel_ExpandFailedNonFailingSeedIsNoop(t *testing.T) {
	m := newTestModel(t)

	if err := m.Expand("t2"); err != nil {
		t.Fatal(err)
	}
	m.ExpandFailed("t2")
	if m.Pending() != 0 {
		t.Error("passing seed queued expansion work")
	}

	// SKIP outside a test node does not qualify either.
	m.ExpandFailed("k3")
	if m.Pending() != 0 {
		t.Error("passing keyword seed queued expansion work")
	}
}

func TestModel_StepProcessesOneNodePerTick(t *testing.T) {
	m := newTestModel(t)

	m.ExpandFailed("s1")
	if m.Pending() != 1 {
		t.Fatalf("pending = %d, want 1 seed", m.Pending())
	}

	// First tick expands the seed only.
	m.Step()
	if !mustNode(t, m, "s1").Expanded() {
		t.Fatal("seed not expanded on first step")
	}
	if n, ok := m.Lookup("k1"); ok && n.Expanded() {
		t.Error("descendant expanded on the seed's tick")
	}

	steps := 1
	for m.Step() {
		steps++
		if steps > 100 {
			t.Fatal("expansion did not terminate")
		}
	}
	if !mustNode(t, m, "k1").Expanded() {
		t.Error("chain incomplete after drain")
	}
}

func TestModel_CollapseAbandonsQueuedDescendants(t *testing.T) {
	m := newTestModel(t)

	m.ExpandFailed("s1")
	m.Step() // expand s1, queue t1 and t3
	m.Step() // expand t1, queue k1

	// The user collapses t1 while k1 is still queued: k1 is now hidden
	// and its expansion is abandoned.
	m.Collapse("t1")
	m.Drain()

	if mustNode(t, m, "k1").Expanded() {
		t.Error("expansion continued under a collapsed ancestor")
	}
	// The other branch still completed.
	if !mustNode(t, m, "t3").Expanded() {
		t.Error("unrelated branch abandoned")
	}
	if !mustNode(t, m, "k4").Expanded() {
		t.Error("failing keyword on the surviving branch not expanded")
	}
}

func TestModel_SeverityThreshold(t *testing.T) {
	m := newTestModel(t)
	m.ExpandFailed("s1")
	m.Drain()

	m.SetThreshold(LevelWarn)
	ids := visibleIDs(m)
	for _, hidden := range []string{"m1", "m2"} {
		if containsID(ids, hidden) {
			t.Errorf("message %s visible at WARN threshold", hidden)
		}
	}
	for _, shown := range []string{"m3", "m4"} {
		if !containsID(ids, shown) {
			t.Errorf("message %s hidden at WARN threshold", shown)
		}
	}

	// Rows populated after the threshold change obey it too.
	if err := m.Expand("t1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Expand("k2"); err != nil {
		t.Fatal(err)
	}
	if containsID(visibleIDs(m), "m5") {
		t.Error("lazily-populated DEBUG message visible at WARN threshold")
	}

	m.SetThreshold(LevelNone)
	for _, id := range visibleIDs(m) {
		if n, _ := m.Lookup(id); n != nil && n.Type == TypeMessage {
			t.Errorf("message %s visible at NONE threshold", id)
		}
	}
}

func TestModel_ExpandAllAndCollapseAll(t *testing.T) {
	m := newTestModel(t)

	m.ExpandAll()
	m.Drain()
	if !containsID(visibleIDs(m), "m6") {
		t.Error("deep message not visible after ExpandAll")
	}

	m.CollapseAll()
	ids := visibleIDs(m)
	want := []string{"s1", "t1", "t2", "t3"}
	if len(ids) != len(want) {
		t.Errorf("visible after CollapseAll = %v, want %v", ids, want)
	}
}

// flakySource defers children for one ref a fixed number of times.
type flakySource struct {
	inner     Source
	ref       string
	failures  int
	attempted int
}

func (f *flakySource) Root() (Spec, error) {
	return f.inner.Root()
}

func (f *flakySource) Children(ref string) ([]Spec, error) {
	if ref == f.ref && f.attempted < f.failures {
		f.attempted++
		return nil, ErrNotReady
	}
	return f.inner.Children(ref)
}

func TestModel_NotReadyRetriesUpToLimit(t *testing.T) {
	inner, err := NewReportSource([]byte(sampleReport))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("recovers within the retry budget", func(t *testing.T) {
		src := &flakySource{inner: inner, ref: "root.children.0", failures: 2}
		m, err := NewModel(src)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Expand("t1"); err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		m.Drain()
		if _, ok := m.Lookup("k1"); !ok {
			t.Error("children never loaded despite retries")
		}
	})

	t.Run("gives up past the retry budget", func(t *testing.T) {
		src := &flakySource{inner: inner, ref: "root.children.0", failures: 10}
		m, err := NewModel(src)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Expand("t1"); err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		m.Drain()
		if _, ok := m.Lookup("k1"); ok {
			t.Error("children loaded despite a source that never readied")
		}
		if src.attempted != maxLoadRetries+1 {
			t.Errorf("attempts = %d, want %d", src.attempted, maxLoadRetries+1)
		}
	})
}

func TestNewReportSource_RejectsBadDocuments(t *testing.T) {
	if _, err := NewReportSource([]byte("{not json")); !errors.Is(err, ErrBadReport) {
		t.Errorf("invalid JSON error = %v", err)
	}
	if _, err := NewReportSource([]byte(`{"suite": {}}`)); !errors.Is(err, ErrBadReport) {
		t.Errorf("missing root error = %v", err)
	}
}
