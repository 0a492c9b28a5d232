package lattice

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
)

func TestTraceAppend(t *testing.T) {
	pos := func(line int) cir.Pos {
		return cir.Pos{File: "test.c", Line: line, Col: 1}
	}

	in := InputSource{Fn: "fread", P: pos(1)}
	bin := BinOpTrace{Op: cir.Mult, P: pos(2)}
	sink := AllocSink{Fn: "malloc", P: pos(3)}

	tr := NewTrace(in).Append(bin).Append(sink)

	if tr.Len() != 3 {
		t.Errorf("expected length 3, got %d", tr.Len())
	}
	if !tr.Last().Equal(sink) {
		t.Errorf("expected last element %v, got %v", sink, tr.Last())
	}

	elems := tr.Elems()
	for i, expected := range []TraceElem{in, bin, sink} {
		if !elems[i].Equal(expected) {
			t.Errorf("element %d: expected %v, got %v", i, expected, elems[i])
		}
	}

	// Appending shares the prefix.
	other := NewTrace(in).Append(bin).Append(sink)
	if !tr.Equal(other) {
		t.Errorf("structurally equal traces compare unequal: %v vs %v", tr, other)
	}
	if tr.Equal(NewTrace(in).Append(bin)) {
		t.Errorf("prefix compares equal to full trace")
	}
}

func TestTracesAppend(t *testing.T) {
	pos := func(line int) cir.Pos {
		return cir.Pos{File: "test.c", Line: line, Col: 1}
	}

	in1 := InputSource{Fn: "fread", P: pos(1)}
	in2 := InputSource{Fn: "recv", P: pos(2)}
	bin := BinOpTrace{Op: cir.PlusA, P: pos(3)}

	// Appending to ∅ starts a trace.
	ts := Elements().Traces().Append(in1)
	if ts.Size() != 1 {
		t.Errorf("expected singleton trace set, got %v", ts)
	}

	// Appending extends every member.
	both := ts.Add(NewTrace(in2)).Append(bin)
	if both.Size() != 2 {
		t.Errorf("expected two traces, got %v", both)
	}
	both.ForEach(func(tr *Trace) {
		if !tr.Last().Equal(bin) {
			t.Errorf("member not extended: %v", tr)
		}
	})
}

func TestTracesAppendUnlessLast(t *testing.T) {
	pos := cir.Pos{File: "test.c", Line: 4, Col: 7}
	prune := PruneTrace{Op: cir.Lt, Const: true, P: pos}

	ts := Elements().Traces().
		Append(InputSource{Fn: "scanf", P: cir.Pos{File: "test.c", Line: 1, Col: 1}}).
		AppendUnlessLast(prune)

	// Re-pruning on the same comparison must not grow the traces.
	again := ts.AppendUnlessLast(prune)
	if !again.eq(ts) {
		t.Errorf("repeated refinement grew traces: %v vs %v", again, ts)
	}

	lens := map[int]bool{}
	again.ForEach(func(tr *Trace) { lens[tr.Len()] = true })
	if len(lens) != 1 || !lens[2] {
		t.Errorf("expected all traces of length 2, got %v", again)
	}
}
