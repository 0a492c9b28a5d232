package testutil

import (
	"fmt"
	"sort"
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
)

// ExpectedFinding is the identity of one reported condition, reduced
// to what a fixture can state up front. Proc names the procedure whose
// analysis decided the finding, which for conditions floated out of a
// callee is the caller; Line is the defect site's source line.
type ExpectedFinding struct {
	Kind L.CondKind
	Proc string
	Line int
}

func (e ExpectedFinding) String() string {
	return fmt.Sprintf("%s in %s at line %d", e.Kind, e.Proc, e.Line)
}

// FindingOf projects a decided condition into its expectation form.
func FindingOf(proc *cir.Proc, c L.Condition) ExpectedFinding {
	return ExpectedFinding{Kind: c.Kind, Proc: proc.Name, Line: c.Pos.Line}
}

// MatchFindings checks the reported findings against the fixture's
// expectations, both ways: every expected finding must be reported and
// every reported finding must be expected. Duplicates count.
func MatchFindings(t *testing.T, fx Fixture, got []ExpectedFinding) {
	t.Helper()

	want := append([]ExpectedFinding(nil), fx.Expect...)
	rest := append([]ExpectedFinding(nil), got...)
	sortFindings(want)
	sortFindings(rest)

	for _, w := range want {
		i := findingIndex(rest, w)
		if i == -1 {
			t.Errorf("%s: missing finding: %s", fx.Name(), w)
			continue
		}
		rest = append(rest[:i], rest[i+1:]...)
	}

	for _, g := range rest {
		t.Errorf("%s: unexpected finding: %s", fx.Name(), g)
	}
}

func sortFindings(fs []ExpectedFinding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Proc != b.Proc {
			return a.Proc < b.Proc
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Kind < b.Kind
	})
}

func findingIndex(fs []ExpectedFinding, f ExpectedFinding) int {
	for i, o := range fs {
		if o == f {
			return i
		}
	}
	return -1
}
