package logview

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrNotReady signals that a node's children are not yet available and
// the expansion step should be retried.
var ErrNotReady = errors.New("logview: children not ready")

// ErrBadReport signals an unusable report document.
var ErrBadReport = errors.New("logview: malformed report")

// Spec describes one element as declared by the report document.
type Spec struct {
	Ref         string
	ID          string
	Type        NodeType
	Status      Status
	Level       Level
	Text        string
	HasChildren bool
}

// Source supplies tree elements on demand.
type Source interface {
	// Root returns the report's root element.
	Root() (Spec, error)

	// Children returns the element's children. ErrNotReady asks the
	// caller to retry on a later tick.
	Children(ref string) ([]Spec, error)
}

// ReportSource reads a run report JSON document lazily. The document is
// a nested element tree:
//
//	{"root": {"id": "s1", "type": "suite", "name": "...",
//	          "status": "FAIL", "children": [...]}}
//
// Elements are addressed by their path into the document, so only the
// slices of the tree the user actually expands are ever decoded.
type ReportSource struct {
	doc []byte
}

// NewReportSource wraps a report document.
func NewReportSource(doc []byte) (*ReportSource, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrBadReport
	}
	if !gjson.GetBytes(doc, "root").Exists() {
		return nil, fmt.Errorf("%w: no root element", ErrBadReport)
	}
	return &ReportSource{doc: doc}, nil
}

// Root returns the document's root element.
func (s *ReportSource) Root() (Spec, error) {
	return s.spec("root", gjson.GetBytes(s.doc, "root")), nil
}

// Children decodes the element's child array.
func (s *ReportSource) Children(ref string) ([]Spec, error) {
	elem := gjson.GetBytes(s.doc, ref)
	if !elem.Exists() {
		return nil, fmt.Errorf("%w: no element at %s", ErrBadReport, ref)
	}
	kids := elem.Get("children")
	if !kids.Exists() {
		return nil, nil
	}

	var out []Spec
	i := 0
	kids.ForEach(func(_, child gjson.Result) bool {
		out = append(out, s.spec(ref+".children."+strconv.Itoa(i), child))
		i++
		return true
	})
	return out, nil
}

func (s *ReportSource) spec(ref string, elem gjson.Result) Spec {
	text := elem.Get("name").String()
	if text == "" {
		text = elem.Get("text").String()
	}
	return Spec{
		Ref:         ref,
		ID:          elem.Get("id").String(),
		Type:        ParseNodeType(elem.Get("type").String()),
		Status:      ParseStatus(elem.Get("status").String()),
		Level:       ParseLevel(elem.Get("level").String()),
		Text:        text,
		HasChildren: elem.Get("children.#").Int() > 0,
	}
}
