package absint

import (
	"strings"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// Model is one library-function handler. Exec is the call's memory
// effect, Check its defect-detection effect against the pre-state.
// Models are pure: anything learned flows out through the returned
// memory or condition set.
type Model interface {
	Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory
	Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions
}

// ModelEntry pairs a callee name pattern with its handler. A trailing
// '*' matches by prefix, anything else matches exactly.
type ModelEntry struct {
	Pattern string
	Model   Model
}

func (e ModelEntry) Matches(name string) bool {
	if strings.HasSuffix(e.Pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(e.Pattern, "*"))
	}
	return e.Pattern == name
}

// Registry is an ordered model catalog: the first matching entry wins,
// so exact names shadow prefix families registered after them.
type Registry []ModelEntry

// Lookup finds the model handling the given callee name. Template
// argument lists in the name are ignored, so every instantiation of a
// container template dispatches to the template's model.
func (r Registry) Lookup(name string) (Model, bool) {
	name = normalizeCallee(name)
	for _, e := range r {
		if e.Matches(name) {
			return e.Model, true
		}
	}
	return nil, false
}

// normalizeCallee removes template argument lists from a C++ callee
// name. A '<' directly after "operator" is the operator's own name,
// never a template list.
func normalizeCallee(name string) string {
	if !strings.ContainsRune(name, '<') {
		return name
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch == '<' && depth == 0 && isOperatorAngle(b.String()):
			b.WriteByte(ch)
		case ch == '<':
			depth++
		case ch == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func isOperatorAngle(prefix string) bool {
	return strings.HasSuffix(prefix, "operator") ||
		strings.HasSuffix(prefix, "operator<")
}

// DefaultRegistry assembles the built-in catalog, optionally extended
// by a model configuration. Configured entries come first so projects
// can override the built-in handling of a name.
func DefaultRegistry(cfg *ModelConfig) Registry {
	r := cfg.entries()

	r = append(r,
		// Input primitives.
		ModelEntry{"fread", taintSourceModel{fn: "fread", destArg: 0, variadicFrom: -1}},
		ModelEntry{"fgets", taintSourceModel{fn: "fgets", destArg: 0, variadicFrom: -1}},
		ModelEntry{"gets", taintSourceModel{fn: "gets", destArg: 0, variadicFrom: -1}},
		ModelEntry{"read", taintSourceModel{fn: "read", destArg: 1, variadicFrom: -1}},
		ModelEntry{"recv", taintSourceModel{fn: "recv", destArg: 1, variadicFrom: -1}},
		ModelEntry{"scanf", taintSourceModel{fn: "scanf", destArg: -1, variadicFrom: 1}},
		ModelEntry{"fscanf", taintSourceModel{fn: "fscanf", destArg: -1, variadicFrom: 2}},
		ModelEntry{"getenv", getenvModel{}},

		// Conversions of possibly attacker-controlled digit strings.
		ModelEntry{"atoi", convertModel{fn: "atoi"}},
		ModelEntry{"atol", convertModel{fn: "atol"}},
		ModelEntry{"strto*", convertModel{fn: "strtol"}},

		// Allocators.
		ModelEntry{"malloc", allocModel{fn: "malloc", sizeArgs: []int{0}}},
		ModelEntry{"calloc", allocModel{fn: "calloc", sizeArgs: []int{0, 1}, zeroed: true}},
		ModelEntry{"realloc", allocModel{fn: "realloc", sizeArgs: []int{1}}},
		ModelEntry{"g_malloc*", allocModel{fn: "g_malloc", sizeArgs: []int{0}}},
		ModelEntry{"free", freeModel{}},
		ModelEntry{"memset", memsetModel{}},

		// Copies and concatenations.
		ModelEntry{"strcpy", copyModel{fn: "strcpy", dstArg: 0, srcArg: 1}},
		ModelEntry{"strncpy", copyModel{fn: "strncpy", dstArg: 0, srcArg: 1}},
		ModelEntry{"memcpy", copyModel{fn: "memcpy", dstArg: 0, srcArg: 1}},
		ModelEntry{"strcat", copyModel{fn: "strcat", dstArg: 0, srcArg: 1, concat: true}},
		ModelEntry{"strncat", copyModel{fn: "strncat", dstArg: 0, srcArg: 1, concat: true}},

		// Format sinks.
		ModelEntry{"printf", formatModel{fn: "printf", fmtArg: 0, dstArg: -1}},
		ModelEntry{"fprintf", formatModel{fn: "fprintf", fmtArg: 1, dstArg: -1}},
		ModelEntry{"sprintf", formatModel{fn: "sprintf", fmtArg: 1, dstArg: 0}},
		ModelEntry{"snprintf", formatModel{fn: "snprintf", fmtArg: 2, dstArg: 0}},
		ModelEntry{"vsprintf", formatModel{fn: "vsprintf", fmtArg: 1, dstArg: 0}},
		ModelEntry{"syslog", formatModel{fn: "syslog", fmtArg: 1, dstArg: -1}},

		// C++ strings. Construction and assignment are the
		// initialization-sensitive operations.
		ModelEntry{"std::string::string", copyModel{
			fn: "std::string::string", dstArg: 0, srcArg: 1,
			initSensitive: true, initializes: true,
		}},
		ModelEntry{"std::string::operator=", copyModel{
			fn: "std::string::operator=", dstArg: 0, srcArg: 1,
			initSensitive: true, initializes: true,
		}},
		ModelEntry{"std::string::append", copyModel{
			fn: "std::string::append", dstArg: 0, srcArg: 1,
			concat: true, initSensitive: true, initializes: true,
		}},
		ModelEntry{"std::string::operator+=", copyModel{
			fn: "std::string::operator+=", dstArg: 0, srcArg: 1,
			concat: true, initSensitive: true, initializes: true,
		}},
	)

	// Associative containers, including configured extras.
	for _, name := range cfg.containerNames() {
		r = append(r,
			ModelEntry{name + "::operator[]", containerModel{fn: name, mode: containerAccess}},
			ModelEntry{name + "::find", containerModel{fn: name, mode: containerFind}},
			ModelEntry{name + "::insert", containerModel{fn: name, mode: containerInsert}},
		)
	}

	return r
}

// loadThrough reads the joined value one dereference hop behind an
// argument expression. String literal storage reads as an initialized
// scalar even though literal cells are never bound.
func loadThrough(env Env, mem L.Memory, e cir.Expr) (L.AbstractValue, L.LocSet) {
	targets := EvalExpr(env, mem, e).PointerValue().FilterNil()
	v := L.MemOps(mem).Load(targets)
	targets.ForEach(func(l loc.LocWithIdx) {
		if _, ok := l.Base().(loc.StringLitLocation); ok {
			v = v.MonoJoin(L.Elements().AbstractBasic())
		}
	})
	return v, targets
}

// bindRet stores the value into the call's return binding, if any.
func bindRet(env Env, ret *cir.LVal, mem L.Memory, v L.AbstractValue) L.Memory {
	if ret == nil {
		return mem
	}
	ops := L.MemOps(mem)
	ops.Store(EvalLVal(env, mem, ret), v)
	return ops.Memory()
}

// emitAt raises one condition of the given kind per target location.
func emitAt(
	conds L.Conditions,
	kind L.CondKind,
	targets L.LocSet,
	init L.Initialization,
	traces L.Traces,
	pos cir.Pos,
) L.Conditions {
	targets.ForEach(func(l loc.LocWithIdx) {
		conds = conds.Add(L.NewCondition(kind, l, init, pos).WithTraces(traces))
	})
	return conds
}

// symbolicLocs projects a value's symbolic taint origins to locations,
// the targets of conditions that substitution resolves at call sites.
func symbolicLocs(t L.Taint) L.LocSet {
	res := L.Elements().LocSet()
	t.ForEachSymbolic(func(sp loc.SymbolicParam) {
		res = res.Add(loc.FromLocation(sp))
	})
	return res
}
