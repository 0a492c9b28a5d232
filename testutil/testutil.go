// Package testutil carries the built-in analysis subjects: small
// intermediate-representation programs exercising the checker end to
// end, shared between the command line driver and the tests.
package testutil

import (
	"github.com/cs-au-dk/cat/analysis/bounds"
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// Fixture bundles one analyzable program with everything the pipeline
// needs to run it.
type Fixture struct {
	// Prog holds the program's procedures. Calls between them resolve
	// by name; everything else dispatches to the model catalog.
	Prog *cir.Program
	// Facts carries the numeric oracle's interval facts per procedure.
	// Procedures without an entry are analyzed with location-only
	// reasoning.
	Facts map[string]*bounds.Facts
	// Expect lists the findings the checker should surface, used by the
	// end-to-end tests.
	Expect []ExpectedFinding
}

// Name identifies the fixture by its program name.
func (fx Fixture) Name() string {
	return fx.Prog.Name
}

// Fixtures builds the full catalog, in a fixed presentation order.
// Programs are rebuilt on every call so callers can never observe each
// other's analysis state.
func Fixtures() []Fixture {
	return []Fixture{
		packetProgram(),
		motdProgram(),
		recordsProgram(),
		greetProgram(),
		inventoryProgram(),
		serviceProgram(),
	}
}

// FixtureNamed retrieves one catalog entry by program name.
func FixtureNamed(name string) (Fixture, bool) {
	for _, fx := range Fixtures() {
		if fx.Name() == name {
			return fx, true
		}
	}
	return Fixture{}, false
}

// filePos fixes the source file of a fixture; the returned closure
// places nodes on lines of it.
func filePos(file string) func(line int) cir.Pos {
	return func(line int) cir.Pos {
		return cir.Pos{File: file, Line: line}
	}
}

func use(v *cir.Var, pos cir.Pos) cir.Expr {
	return &cir.LvalExpr{LV: cir.VarLVal(v, pos), P: pos}
}

func addr(v *cir.Var, pos cir.Pos) cir.Expr {
	return &cir.AddrOf{LV: cir.VarLVal(v, pos), P: pos}
}

func field(v *cir.Var, name string, pos cir.Pos) cir.Expr {
	return &cir.LvalExpr{LV: cir.VarLVal(v, pos).Field(name), P: pos}
}

func num(v int64, pos cir.Pos) cir.Expr {
	return &cir.Const{Value: v, Typ: cir.IntType, P: pos}
}

func str(s string, pos cir.Pos) cir.Expr {
	return &cir.StrLit{Value: s, P: pos}
}

func stdin(pos cir.Pos) cir.Expr {
	v := &cir.Var{Name: "stdin", Typ: cir.PtrTo(cir.NamedType("FILE", nil)), P: pos}
	return use(v, pos)
}

// packetProgram reads a struct from the input stream and sizes an
// allocation with one of its fields.
//
//	 1  struct packet { int len; char tag; };
//	 2
//	 3  int main() {
//	 4    struct packet p;
//	 5    fread(&p, sizeof(struct packet), 1, stdin);
//	 6    int n = p.len;
//	 7    char *buf = malloc(n);
//	 8    return 0;
//	 9  }
func packetProgram() Fixture {
	at := filePos("packet.c")
	packetT := cir.StructType("packet")

	b := cir.NewProc("main", at(3)).Returns(cir.IntType)
	p := b.Local("p", packetT, at(4))
	b.Call(nil, "fread", []cir.Expr{
		addr(p, at(5)),
		&cir.SizeOf{Typ: packetT, P: at(5)},
		num(1, at(5)),
		stdin(at(5)),
	}, at(5))
	n := b.Local("n", cir.IntType, at(6))
	b.Assign(cir.VarLVal(n, at(6)), field(p, "len", at(6)), at(6))
	buf := b.Local("buf", cir.PtrTo(cir.CharType), at(7))
	alloc := b.Call(cir.VarLVal(buf, at(7)), "malloc", []cir.Expr{use(n, at(7))}, at(7))
	b.Return(num(0, at(8)), at(8))
	main := b.Finish()

	// The oracle knows nothing about the read length, and names the
	// buffer the allocation introduces.
	nLoc := loc.FromLocation(loc.LocationFromVar(n))
	bufCell := loc.FromLocation(loc.AllocSite(alloc, 0, cir.CharType))
	unbounded := L.Elements().Interval(L.MinusInfinity{}, L.PlusInfinity{})
	facts := bounds.New(main).
		BindPre(alloc, nLoc, unbounded).
		BindPost(alloc, nLoc, unbounded).
		BindPost(alloc, bufCell, unbounded)

	return Fixture{
		Prog:  &cir.Program{Name: "packet", Procs: []*cir.Proc{main}},
		Facts: map[string]*bounds.Facts{"main": facts},
		Expect: []ExpectedFinding{
			{Kind: L.CondOverflow, Proc: "main", Line: 7},
		},
	}
}

// motdProgram hands an environment string straight to printf as the
// format argument.
//
//	 1  int main() {
//	 2    char *greeting = getenv("MOTD");
//	 3    printf(greeting);
//	 4    return 0;
//	 5  }
func motdProgram() Fixture {
	at := filePos("motd.c")

	b := cir.NewProc("main", at(1)).Returns(cir.IntType)
	greeting := b.Local("greeting", cir.PtrTo(cir.CharType), at(2))
	b.Call(cir.VarLVal(greeting, at(2)), "getenv", []cir.Expr{str("MOTD", at(2))}, at(2))
	b.Call(nil, "printf", []cir.Expr{use(greeting, at(3))}, at(3))
	b.Return(num(0, at(4)), at(4))

	return Fixture{
		Prog: &cir.Program{Name: "motd", Procs: []*cir.Proc{b.Finish()}},
		Expect: []ExpectedFinding{
			{Kind: L.CondFormat, Proc: "main", Line: 3},
		},
	}
}

// recordsProgram converts an input line to a count and multiplies it
// into an allocation size. The bounds check on the way is recorded in
// the finding's provenance but does not unmark the attacker-chosen
// value.
//
//	 1  int main() {
//	 2    char line[32];
//	 3    fgets(line, 32, stdin);
//	 4    int count = atoi(line);
//	 5    int total = count * 8;
//	 6    if (total < 256) {
//	 7      char *recs = malloc(total);
//	 8    }
//	 9    return 0;
//	10  }
func recordsProgram() Fixture {
	at := filePos("records.c")

	b := cir.NewProc("main", at(1)).Returns(cir.IntType)
	line := b.Local("line", cir.ArrOf(cir.CharType), at(2))
	b.Call(nil, "fgets", []cir.Expr{addr(line, at(3)), num(32, at(3)), stdin(at(3))}, at(3))
	count := b.Local("count", cir.IntType, at(4))
	b.Call(cir.VarLVal(count, at(4)), "atoi", []cir.Expr{addr(line, at(4))}, at(4))
	total := b.Local("total", cir.IntType, at(5))
	b.Assign(cir.VarLVal(total, at(5)),
		&cir.BinOp{Op: cir.Mult, X: use(count, at(5)), Y: num(8, at(5)), P: at(5)}, at(5))
	br := b.Branch(&cir.BinOp{Op: cir.Lt, X: use(total, at(6)), Y: num(256, at(6)), P: at(6)}, at(6))
	recs := b.Local("recs", cir.PtrTo(cir.CharType), at(7))
	b.Call(cir.VarLVal(recs, at(7)), "malloc", []cir.Expr{use(total, at(7))}, at(7))
	ret := b.Return(num(0, at(9)), at(9))
	b.Goto(br, ret)

	return Fixture{
		Prog: &cir.Program{Name: "records", Procs: []*cir.Proc{b.Finish()}},
		Expect: []ExpectedFinding{
			{Kind: L.CondOverflow, Proc: "main", Line: 7},
		},
	}
}

// greetProgram copy-constructs a string from a default-constructed
// one the program never assigned.
//
//	 1  int main() {
//	 2    std::string name;
//	 3    std::string greeting(name);
//	 4    return 0;
//	 5  }
func greetProgram() Fixture {
	at := filePos("greet.cpp")

	b := cir.NewProc("main", at(1)).Returns(cir.IntType)
	name := b.Local("name", cir.StringType, at(2))
	greeting := b.Local("greeting", cir.StringType, at(3))
	b.Call(nil, "std::string::string", []cir.Expr{addr(greeting, at(3)), addr(name, at(3))}, at(3))
	b.Return(num(0, at(4)), at(4))

	return Fixture{
		Prog: &cir.Program{Name: "greet", Procs: []*cir.Proc{b.Finish()}},
		Expect: []ExpectedFinding{
			{Kind: L.CondUninit, Proc: "main", Line: 3},
		},
	}
}

// inventoryProgram reads a map slot no insertion ever wrote and copies
// the library-default-constructed element out of it.
//
//	 1  int main() {
//	 2    std::map<int, std::string> parts;
//	 3    std::string label;
//	 4    std::string *slot = &parts[7];
//	 5    label = *slot;
//	 6    return 0;
//	 7  }
func inventoryProgram() Fixture {
	at := filePos("inventory.cpp")
	mapT := cir.NamedType("std::map<int, std::string>", cir.StringType)

	b := cir.NewProc("main", at(1)).Returns(cir.IntType)
	parts := b.Local("parts", mapT, at(2))
	label := b.Local("label", cir.StringType, at(3))
	slot := b.Local("slot", cir.PtrTo(cir.StringType), at(4))
	b.Call(cir.VarLVal(slot, at(4)), "std::map<int, std::string>::operator[]",
		[]cir.Expr{addr(parts, at(4)), num(7, at(4))}, at(4))
	b.Call(nil, "std::string::operator=",
		[]cir.Expr{addr(label, at(5)), use(slot, at(5))}, at(5))
	b.Return(num(0, at(6)), at(6))

	return Fixture{
		Prog: &cir.Program{Name: "inventory", Procs: []*cir.Proc{b.Finish()}},
		Expect: []ExpectedFinding{
			{Kind: L.CondUninit, Proc: "main", Line: 5},
		},
	}
}

// serviceProgram routes an attacker-chosen length through an
// allocation wrapper. The wrapper itself stays silent; the finding
// lands in the caller that passes untrusted input, while the call
// passing a constant stays clean.
//
//	 1  void *xalloc(int n) {
//	 2    return malloc(n);
//	 3  }
//	 4
//	 5  int main() {
//	 6    int len;
//	 7    scanf("%d", &len);
//	 8    void *big = xalloc(len);
//	 9    void *fixed = xalloc(64);
//	10    return 0;
//	11  }
func serviceProgram() Fixture {
	at := filePos("service.c")
	voidPtr := cir.PtrTo(cir.VoidType)

	bx := cir.NewProc("xalloc", at(1)).Returns(voidPtr)
	n := bx.Param("n", cir.IntType, at(1))
	p := bx.Local("p", voidPtr, at(2))
	bx.Call(cir.VarLVal(p, at(2)), "malloc", []cir.Expr{use(n, at(2))}, at(2))
	bx.Return(use(p, at(2)), at(2))

	bm := cir.NewProc("main", at(5)).Returns(cir.IntType)
	length := bm.Local("len", cir.IntType, at(6))
	bm.Call(nil, "scanf", []cir.Expr{str("%d", at(7)), addr(length, at(7))}, at(7))
	big := bm.Local("big", voidPtr, at(8))
	bm.Call(cir.VarLVal(big, at(8)), "xalloc", []cir.Expr{use(length, at(8))}, at(8))
	fixed := bm.Local("fixed", voidPtr, at(9))
	bm.Call(cir.VarLVal(fixed, at(9)), "xalloc", []cir.Expr{num(64, at(9))}, at(9))
	bm.Return(num(0, at(10)), at(10))

	return Fixture{
		Prog: &cir.Program{Name: "service", Procs: []*cir.Proc{bx.Finish(), bm.Finish()}},
		Expect: []ExpectedFinding{
			// The defect site is the wrapped allocation; the decision
			// that it is reachable with untrusted input is main's.
			{Kind: L.CondOverflow, Proc: "main", Line: 2},
		},
	}
}
