package utils

import "fmt"

type DiagnosticKind string

const (
	DiagOutOfRange       DiagnosticKind = "out_of_range"
	DiagCycle            DiagnosticKind = "cycle"
	DiagSkippedFace      DiagnosticKind = "skipped_face"
	DiagSkippedMesh      DiagnosticKind = "skipped_mesh"
	DiagSkippedObject    DiagnosticKind = "skipped_object"
	DiagBoundsHeuristic  DiagnosticKind = "bounds_heuristic"
	DiagUnknownExtension DiagnosticKind = "unknown_extension"
)

// Diagnostic is a non fatal decode quirk. Real files contain plenty of them,
// so they are collected and returned next to the document instead of failing.
type Diagnostic struct {
	Kind    DiagnosticKind
	Record  string
	Index   int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s[%d]: %s", d.Kind, d.Record, d.Index, d.Message)
}

type Diagnostics []Diagnostic

func (ds *Diagnostics) Add(kind DiagnosticKind, record string, index int, format string, a ...interface{}) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Record:  record,
		Index:   index,
		Message: fmt.Sprintf(format, a...),
	})
}

// OutOfRange records a bad cross reference and returns the substitute value.
func (ds *Diagnostics) OutOfRange(record string, index int, field string, value, limit, substitute int) int {
	ds.Add(DiagOutOfRange, record, index, "%s %d out of range [0,%d), using %d", field, value, limit, substitute)
	return substitute
}

func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
