// Package absint implements the abstract interpretation of procedures:
// an expression evaluator over the value domains, branch-condition
// refinement, the library-function model catalog, a per-procedure
// fixed point computation producing summaries, and the instantiation
// of callee summaries at call sites.
package absint

import (
	"github.com/cs-au-dk/cat/analysis/bounds"
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	"github.com/cs-au-dk/cat/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Proc    func(...interface{}) string
	Site    func(...interface{}) string
	Warning func(...interface{}) string
}{
	Proc: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiYellow).SprintFunc())(is...)
	},
	Site: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiCyan).SprintFunc())(is...)
	},
	Warning: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
}

// Env bundles the context a transfer function may consult: the node
// under analysis, the numeric oracle's facts when available (nil
// otherwise), the procedure's alias table, and the node's source
// position for condition and trace identity. Environments are cheap
// values, derived per node.
type Env struct {
	Proc    *cir.Proc
	Node    *cir.Node
	Bounds  *bounds.Facts
	Aliases *AliasTable
	Pos     cir.Pos
}

// NewEnv derives the evaluation environment of a node.
func NewEnv(n *cir.Node, facts *bounds.Facts, aliases *AliasTable) Env {
	return Env{Proc: n.Proc, Node: n, Bounds: facts, Aliases: aliases, Pos: n.P}
}

// TaintOrigin is the concrete taint origin introduced by an input
// primitive firing at this environment's node.
func (env Env) TaintOrigin() L.TaintSource {
	return L.TaintSource{Node: env.Node, Pos: env.Pos}
}
