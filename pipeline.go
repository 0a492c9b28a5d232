package main

import (
	"log"

	ai "github.com/cs-au-dk/cat/analysis/absint"
	"github.com/cs-au-dk/cat/analysis/bounds"
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"

	"github.com/cs-au-dk/cat/utils/graph"
)

// pipeline is a wrapper around the analysis pipeline for one program.
type pipeline struct {
	prog  *cir.Program
	facts map[string]*bounds.Facts
	reg   ai.Registry
}

// procResult pairs a procedure with its computed summary.
type procResult struct {
	proc *cir.Proc
	sum  L.Summary
}

// finding is a decided condition, attributed to the procedure whose
// analysis decided it. For conditions floated out of a callee that is
// the caller, not the procedure containing the defect site.
type finding struct {
	proc *cir.Proc
	cond L.Condition
}

// callGraph connects procedures to the program procedures they call.
// Calls answered by the model catalog contribute no edges.
func (pl pipeline) callGraph() graph.Graph[*cir.Proc] {
	return graph.OfHashable(func(p *cir.Proc) (callees []*cir.Proc) {
		seen := map[*cir.Proc]bool{}
		for _, n := range p.Nodes {
			if n.Kind != cir.NCall {
				continue
			}
			callee, found := pl.prog.Proc(n.Callee)
			if !found || seen[callee] {
				continue
			}
			seen[callee] = true
			callees = append(callees, callee)
		}
		return
	})
}

// analysisOrder groups the procedures into strongly connected
// components, ordered callees before callers.
func (pl pipeline) analysisOrder() [][]*cir.Proc {
	return pl.callGraph().SCC(pl.prog.Procs).Components
}

// decided reports whether the analysis has concluded c. Symbolic
// conditions stay pending until a call site resolves them, and
// initialization conditions lapse when the resolved cell turns out
// to be initialized after all.
func decided(c L.Condition) bool {
	if c.Reported() || c.Loc.IsSymbolic() {
		return false
	}
	return c.Kind != L.CondUninit || c.Init.MayBeUninit()
}

// summaries analyzes every procedure bottom-up over the call graph,
// registering each summary for its callers, and collects the findings
// decided along the way. Mutually recursive procedures see no summary
// for their cycle partners and treat those calls as unknown.
func (pl *pipeline) summaries() ([]procResult, []finding) {
	sums := map[*cir.Proc]L.Summary{}
	findings := []finding{}

	for _, component := range pl.analysisOrder() {
		for _, proc := range component {
			opts.OnVerbose(func() {
				log.Printf("Analyzing %s...", proc.Name)
			})
			sum := ai.Analyze(proc, pl.reg, pl.facts[proc.Name])

			conds := sum.Conditions()
			for _, c := range conds.Entries() {
				if !decided(c) {
					continue
				}
				findings = append(findings, finding{proc, c})
				conds = conds.MarkReported(c)
			}
			sum = sum.UpdateConditions(conds)

			sums[proc] = sum
			pl.reg = pl.reg.WithSummary(proc, sum)
		}
	}

	results := make([]procResult, 0, len(pl.prog.Procs))
	for _, proc := range pl.prog.Procs {
		results = append(results, procResult{proc, sums[proc]})
	}
	return results, findings
}
