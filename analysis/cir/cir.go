// Package cir defines the C intermediate representation the analysis
// operates on. Procedures are lists of nodes in a control-flow graph,
// and expressions follow the CIL simplification: every expression is
// side-effect free, and every call, assignment and branch is its own node.
package cir

import (
	u "github.com/cs-au-dk/cat/utils"

	c "github.com/fatih/color"
)

var colorize = struct {
	Proc    func(...interface{}) string
	Var     func(...interface{}) string
	Builtin func(...interface{}) string
	Index   func(...interface{}) string
	Pos     func(...interface{}) string
}{
	Proc: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiYellow).SprintFunc())(is...)
	},
	Var: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiGreen).SprintFunc())(is...)
	},
	Builtin: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiMagenta).SprintFunc())(is...)
	},
	Index: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiCyan).SprintFunc())(is...)
	},
	Pos: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiWhite, c.Faint).SprintFunc())(is...)
	},
}
