package absint

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

func analyzeProc(t *testing.T, proc *cir.Proc) L.Summary {
	t.Helper()
	return Analyze(proc, DefaultRegistry(&ModelConfig{}), nil)
}

func singleCondition(t *testing.T, sum L.Summary) L.Condition {
	t.Helper()
	conds := sum.Conditions().Entries()
	if len(conds) != 1 {
		t.Fatalf("expected exactly one condition, got %v", sum.Conditions())
	}
	return conds[0]
}

// traceKinds renders a trace's shape for comparison, one tag per step.
func traceKinds(tr *L.Trace) []string {
	var res []string
	for _, el := range tr.Elems() {
		switch el.(type) {
		case L.InputSource:
			res = append(res, "input")
		case L.BinOpTrace:
			res = append(res, "binop")
		case L.PruneTrace:
			res = append(res, "prune")
		case L.AllocSink:
			res = append(res, "alloc")
		case L.FormatSink:
			res = append(res, "format")
		case L.ConcatSink:
			res = append(res, "concat")
		}
	}
	return res
}

func sameKinds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestAllocSizeFromInput walks attacker bytes through a conversion into
// an allocation size.
func TestAllocSizeFromInput(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	buf := b.Local("buf", cir.ArrOf(cir.CharType), at(2))
	b.Call(nil, "fgets", []cir.Expr{ref(buf, at(3)), lit(32, at(3))}, at(3))
	n := b.Local("n", cir.IntType, at(4))
	b.Call(cir.VarLVal(n, at(4)), "atoi", []cir.Expr{ref(buf, at(4))}, at(4))
	p := b.Local("p", cir.PtrTo(cir.CharType), at(5))
	b.Call(cir.VarLVal(p, at(5)), "malloc", []cir.Expr{lv(n, at(5))}, at(5))

	sum := analyzeProc(t, b.Finish())
	c := singleCondition(t, sum)
	if c.Kind != L.CondOverflow {
		t.Errorf("condition kind = %v, expected overflow", c.Kind)
	}
	if !c.Loc.Equal(vloc(n)) {
		t.Errorf("condition raised at %v, expected the size variable", c.Loc)
	}
	if c.Pos.Line != 5 {
		t.Errorf("condition raised at line %d, expected the allocation", c.Pos.Line)
	}

	trs := c.Traces().Entries()
	if len(trs) != 1 || !sameKinds(traceKinds(trs[0]), []string{"input", "alloc"}) {
		t.Errorf("provenance should lead from the input to the sink: %v", c.Traces())
	}

	// The conversion marks the result as potentially out of range.
	v, _ := sum.Memory().Get(vloc(n))
	if !v.OvfValue().MayOverflow() {
		t.Errorf("converted attacker digits should carry the overflow flag: %v", v)
	}
}

func TestAllocCleanSizesSilent(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	p := b.Local("p", cir.PtrTo(cir.CharType), at(2))
	b.Call(cir.VarLVal(p, at(2)), "malloc", []cir.Expr{lit(64, at(2))}, at(2))
	q := b.Local("q", cir.PtrTo(cir.IntType), at(3))
	b.Call(cir.VarLVal(q, at(3)), "malloc",
		[]cir.Expr{&cir.SizeOf{Typ: cir.IntType, P: at(3)}}, at(3))

	if conds := analyzeProc(t, b.Finish()).Conditions(); !conds.Empty() {
		t.Errorf("constant-sized allocations were flagged: %v", conds)
	}
}

// TestAllocatorContents pins what freshly allocated cells read as:
// malloc'ed bytes are garbage, calloc'ed bytes are zeroed, realloc
// carries the old contents into the resized buffer.
func TestAllocatorContents(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	p := b.Local("p", cir.PtrTo(cir.CharType), at(2))
	b.Call(cir.VarLVal(p, at(2)), "malloc", []cir.Expr{lit(8, at(2))}, at(2))
	q := b.Local("q", cir.PtrTo(cir.IntType), at(3))
	b.Call(cir.VarLVal(q, at(3)), "calloc",
		[]cir.Expr{lit(4, at(3)), &cir.SizeOf{Typ: cir.IntType, P: at(3)}}, at(3))
	b.Call(nil, "fgets", []cir.Expr{lv(p, at(4)), lit(8, at(4))}, at(4))
	r := b.Local("r", cir.PtrTo(cir.CharType), at(5))
	b.Call(cir.VarLVal(r, at(5)), "realloc", []cir.Expr{lv(p, at(5)), lit(16, at(5))}, at(5))

	mem := analyzeProc(t, b.Finish()).Memory()

	cellBehind := func(v *cir.Var) L.AbstractValue {
		t.Helper()
		ptr, _ := mem.Get(vloc(v))
		cell, ok := ptr.PointerValue().GetSingle()
		if !ok {
			t.Fatalf("%s does not point at a single buffer: %v", v.Name, ptr)
		}
		content, _ := mem.Get(cell)
		return content
	}

	if v := cellBehind(q); v.MayBeUninit() {
		t.Errorf("calloc'ed buffer reads as garbage: %v", v)
	}
	if v := cellBehind(r); !v.TaintValue().IsTainted() || !v.MayBeUninit() {
		t.Errorf("realloc lost the old buffer's contents: %v", v)
	}
}

func TestFormatStringChecks(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	t.Run("environment string as format", func(t *testing.T) {
		b := cir.NewProc("main", at(1))
		greeting := b.Local("greeting", cir.PtrTo(cir.CharType), at(2))
		b.Call(cir.VarLVal(greeting, at(2)), "getenv",
			[]cir.Expr{slit("MOTD", at(2))}, at(2))
		b.Call(nil, "printf", []cir.Expr{lv(greeting, at(3))}, at(3))

		c := singleCondition(t, analyzeProc(t, b.Finish()))
		if c.Kind != L.CondFormat {
			t.Errorf("condition kind = %v, expected format", c.Kind)
		}
		if _, ok := c.Loc.Base().(loc.AllocationSiteLocation); !ok {
			t.Errorf("finding should sit on the environment string's cell, got %v", c.Loc)
		}
		trs := c.Traces().Entries()
		if len(trs) != 1 || !sameKinds(traceKinds(trs[0]), []string{"input", "format"}) {
			t.Errorf("provenance should lead from getenv to the sink: %v", c.Traces())
		}
	})

	t.Run("literal format with clean arguments", func(t *testing.T) {
		b := cir.NewProc("main", at(1))
		x := b.Local("x", cir.IntType, at(2))
		b.Assign(cir.VarLVal(x, at(2)), lit(42, at(2)), at(2))
		b.Call(nil, "printf", []cir.Expr{slit("%d\n", at(3)), lv(x, at(3))}, at(3))

		if conds := analyzeProc(t, b.Finish()).Conditions(); !conds.Empty() {
			t.Errorf("clean printf call was flagged: %v", conds)
		}
	})

	t.Run("sprintf renders taint into the destination", func(t *testing.T) {
		b := cir.NewProc("main", at(1))
		line := b.Local("line", cir.ArrOf(cir.CharType), at(2))
		b.Call(nil, "gets", []cir.Expr{ref(line, at(3))}, at(3))
		out := b.Local("out", cir.PtrTo(cir.CharType), at(4))
		b.Call(cir.VarLVal(out, at(4)), "malloc", []cir.Expr{lit(64, at(4))}, at(4))
		b.Call(nil, "sprintf",
			[]cir.Expr{lv(out, at(5)), slit("%s", at(5)), ref(line, at(5))}, at(5))

		mem := analyzeProc(t, b.Finish()).Memory()
		outPtr, _ := mem.Get(vloc(out))
		cell, _ := outPtr.PointerValue().GetSingle()
		rendered, _ := mem.Get(cell)

		if !rendered.TaintValue().IsTainted() {
			t.Errorf("rendering dropped the argument's taint: %v", rendered)
		}
		if rendered.MayBeUninit() || !rendered.PointerValue().Empty() {
			t.Errorf("rendered text should be initialized and scalar: %v", rendered)
		}
		trs := rendered.TraceValue().Entries()
		if len(trs) != 1 || !sameKinds(traceKinds(trs[0]), []string{"input", "format"}) {
			t.Errorf("rendered value's provenance is off: %v", rendered.TraceValue())
		}
	})
}

func TestConcatJoinsContents(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	buf := b.Local("buf", cir.PtrTo(cir.CharType), at(2))
	b.Call(cir.VarLVal(buf, at(2)), "malloc", []cir.Expr{lit(32, at(2))}, at(2))
	b.Call(nil, "strcpy", []cir.Expr{lv(buf, at(3)), slit("hello ", at(3))}, at(3))
	line := b.Local("line", cir.ArrOf(cir.CharType), at(4))
	b.Call(nil, "fgets", []cir.Expr{ref(line, at(5)), lit(16, at(5))}, at(5))
	b.Call(nil, "strcat", []cir.Expr{lv(buf, at(6)), ref(line, at(6))}, at(6))

	sum := analyzeProc(t, b.Finish())
	if !sum.Conditions().Empty() {
		t.Errorf("plain C copies should not raise conditions: %v", sum.Conditions())
	}

	mem := sum.Memory()
	bufPtr, _ := mem.Get(vloc(buf))
	cell, _ := bufPtr.PointerValue().GetSingle()
	v, _ := mem.Get(cell)
	if !v.TaintValue().IsTainted() {
		t.Errorf("concatenation dropped the appended taint: %v", v)
	}
	trs := v.TraceValue().Entries()
	if len(trs) != 1 || !sameKinds(traceKinds(trs[0]), []string{"input", "concat"}) {
		t.Errorf("concatenation provenance is off: %v", v.TraceValue())
	}
}

func TestStringInitialization(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.cpp", Line: line} }

	t.Run("assignment initializes", func(t *testing.T) {
		b := cir.NewProc("main", at(1))
		s := b.Local("s", cir.StringType, at(2))
		b.Call(nil, "std::string::operator=",
			[]cir.Expr{ref(s, at(3)), slit("x", at(3))}, at(3))
		u := b.Local("u", cir.StringType, at(4))
		b.Call(nil, "std::string::string",
			[]cir.Expr{ref(u, at(4)), ref(s, at(4))}, at(4))

		sum := analyzeProc(t, b.Finish())
		if !sum.Conditions().Empty() {
			t.Errorf("copy of an assigned string was flagged: %v", sum.Conditions())
		}
		v, _ := sum.Memory().Get(vloc(s))
		if v.MayBeUninit() {
			t.Errorf("assignment did not initialize the destination: %v", v)
		}
	})

	t.Run("append from unconstructed source", func(t *testing.T) {
		b := cir.NewProc("main", at(1))
		s := b.Local("s", cir.StringType, at(2))
		d := b.Local("d", cir.StringType, at(3))
		b.Call(nil, "std::string::operator=",
			[]cir.Expr{ref(d, at(4)), slit("", at(4))}, at(4))
		b.Call(nil, "std::string::append",
			[]cir.Expr{ref(d, at(5)), ref(s, at(5))}, at(5))

		c := singleCondition(t, analyzeProc(t, b.Finish()))
		if c.Kind != L.CondUninit || !c.Loc.Equal(vloc(s)) {
			t.Errorf("expected an uninitialized-use finding on the source, got %v", c)
		}
		if c.Pos.Line != 5 {
			t.Errorf("finding placed at line %d, expected the append", c.Pos.Line)
		}
	})
}

// TestContainerRoundTrip exercises the on-demand element storage of
// associative containers: inserted keys read back clean, keys nothing
// inserted read as library-default-constructed values.
func TestContainerRoundTrip(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.cpp", Line: line} }
	mapT := cir.NamedType("std::map<int, std::string>", cir.StringType)

	b := cir.NewProc("main", at(1))
	parts := b.Local("parts", mapT, at(2))
	val := b.Local("val", cir.StringType, at(3))
	b.Call(nil, "std::string::operator=",
		[]cir.Expr{ref(val, at(3)), slit("bolt", at(3))}, at(3))
	b.Call(nil, "std::map<int, std::string>::insert",
		[]cir.Expr{ref(parts, at(4)), lit(7, at(4)), ref(val, at(4))}, at(4))

	hit := b.Local("hit", cir.PtrTo(cir.StringType), at(5))
	b.Call(cir.VarLVal(hit, at(5)), "std::map<int, std::string>::operator[]",
		[]cir.Expr{ref(parts, at(5)), lit(7, at(5))}, at(5))
	a := b.Local("a", cir.StringType, at(6))
	b.Call(nil, "std::string::operator=",
		[]cir.Expr{ref(a, at(6)), lv(hit, at(6))}, at(6))

	miss := b.Local("miss", cir.PtrTo(cir.StringType), at(7))
	b.Call(cir.VarLVal(miss, at(7)), "std::map<int, std::string>::operator[]",
		[]cir.Expr{ref(parts, at(7)), lit(9, at(7))}, at(7))
	c := b.Local("c", cir.StringType, at(8))
	b.Call(nil, "std::string::operator=",
		[]cir.Expr{ref(c, at(8)), lv(miss, at(8))}, at(8))

	cond := singleCondition(t, analyzeProc(t, b.Finish()))
	if cond.Kind != L.CondUninit {
		t.Errorf("condition kind = %v, expected uninit", cond.Kind)
	}
	if cond.Pos.Line != 8 {
		t.Errorf("only the missed key should be flagged, got line %d", cond.Pos.Line)
	}
	if idx, ok := cond.Loc.Index(); !ok || !idx.Equal(loc.ConstIndex(9)) {
		t.Errorf("finding should carry the missed key, got %v", cond.Loc)
	}
}

// TestContainerUnknownExtension drives a container access out of a
// source file neither frontend produces. The model disables itself for
// the call instead of aborting the run: no findings, and the result
// binds to ⊥.
func TestContainerUnknownExtension(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.rs", Line: line} }
	mapT := cir.NamedType("std::map<int, int>", cir.IntType)

	b := cir.NewProc("main", at(1))
	parts := b.Local("parts", mapT, at(2))
	hit := b.Local("hit", cir.PtrTo(cir.IntType), at(3))
	b.Call(cir.VarLVal(hit, at(3)), "std::map<int, int>::operator[]",
		[]cir.Expr{ref(parts, at(3)), lit(7, at(3))}, at(3))

	sum := analyzeProc(t, b.Finish())
	if !sum.Conditions().Empty() {
		t.Errorf("disabled model raised conditions: %v", sum.Conditions())
	}
	v, found := sum.Memory().Get(vloc(hit))
	if !found || !v.IsBot() {
		t.Errorf("disabled model should bind ⊥ to its result, got (%v, %v)", v, found)
	}
}

func TestScanfTaintsDestinations(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	x := b.Local("x", cir.IntType, at(2))
	y := b.Local("y", cir.IntType, at(2))
	cnt := b.Local("cnt", cir.IntType, at(3))
	b.Call(cir.VarLVal(cnt, at(3)), "scanf",
		[]cir.Expr{slit("%d %d", at(3)), ref(x, at(3)), ref(y, at(3))}, at(3))

	mem := analyzeProc(t, b.Finish()).Memory()
	for _, v := range []*cir.Var{x, y, cnt} {
		got, _ := mem.Get(vloc(v))
		if !got.TaintValue().IsTainted() {
			t.Errorf("%s should be attacker controlled after scanf: %v", v.Name, got)
		}
	}
}

// TestInputReachesBoundFields checks that reading into a struct marks
// previously written field cells, not just the aggregate.
func TestInputReachesBoundFields(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	p := b.Local("p", cir.StructType("packet"), at(2))
	b.Assign(cir.VarLVal(p, at(3)).Field("len"), lit(0, at(3)), at(3))
	b.Call(nil, "fread", []cir.Expr{ref(p, at(4)), lit(8, at(4)), lit(1, at(4))}, at(4))

	mem := analyzeProc(t, b.Finish()).Memory()
	fieldCell := loc.FromLocation(loc.NewFieldLocation(loc.LocationFromVar(p), "len"))
	v, _ := mem.Get(fieldCell)
	if !v.TaintValue().IsTainted() {
		t.Errorf("field cell missed the incoming taint: %v", v)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry(&ModelConfig{})

	lookups := []struct {
		name  string
		found bool
	}{
		{"malloc", true},
		{"strtoul", true},
		{"g_malloc0", true},
		{"std::map<int, std::string>::operator[]", true},
		{"std::unordered_map<Key, V>::find", true},
		{"std::map<int, int>::end", false},
		{"close", false},
	}
	for _, tc := range lookups {
		if _, found := r.Lookup(tc.name); found != tc.found {
			t.Errorf("Lookup(%q) found = %v, expected %v", tc.name, found, tc.found)
		}
	}
}

func TestNormalizeCallee(t *testing.T) {
	tests := []struct{ in, out string }{
		{"malloc", "malloc"},
		{"std::map<int, std::string>::operator[]", "std::map::operator[]"},
		{"std::vector<std::pair<int, int>>::size", "std::vector::size"},
		{"std::basic_ostream<char>::operator<<", "std::basic_ostream::operator<<"},
		{"operator<", "operator<"},
		{"std::set<int>::operator<", "std::set::operator<"},
	}
	for _, tc := range tests {
		if got := normalizeCallee(tc.in); got != tc.out {
			t.Errorf("normalizeCallee(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}

func TestModelConfig(t *testing.T) {
	raw := []byte(`
sources:
  - name: read_packet
    dest: 1
formats:
  - name: log_msg
    fmt: 2
  - name: render
    fmt: 1
    dest: 0
containers:
  - QMap
`)
	cfg, err := ParseModelConfig(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	r := DefaultRegistry(cfg)

	if m, found := r.Lookup("read_packet"); !found {
		t.Errorf("configured source not registered")
	} else if ts, ok := m.(taintSourceModel); !ok || ts.destArg != 1 {
		t.Errorf("configured source mis-wired: %#v", m)
	}

	if m, found := r.Lookup("log_msg"); !found {
		t.Errorf("configured stream format sink not registered")
	} else if fm, ok := m.(formatModel); !ok || fm.fmtArg != 2 || fm.dstArg != -1 {
		t.Errorf("configured format sink mis-wired: %#v", m)
	}

	if m, _ := r.Lookup("render"); m.(formatModel).dstArg != 0 {
		t.Errorf("configured render destination mis-wired: %#v", m)
	}

	if _, found := r.Lookup("QMap<int, QString>::operator[]"); !found {
		t.Errorf("configured container type not registered")
	}

	if _, err := ParseModelConfig([]byte("sources: {")); err == nil {
		t.Errorf("malformed configuration accepted")
	}
}
