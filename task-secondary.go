package main

import (
	"fmt"
	"strconv"

	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
	dotg "github.com/cs-au-dk/cat/graph"

	"github.com/fatih/color"
)

// secondaryTask checks whether a non-checking task was provided, and
// executes it.
func (pl pipeline) secondaryTask() {
	switch {
	// lattice-metrics : measures the computed summaries per procedure.
	case task.IsLatticeMetrics():
		results, _ := pl.summaries()

		msg := "================ Results =====================\n\n"
		for _, r := range results {
			pts, traces := 0, 0
			r.sum.Memory().ForEach(func(_ loc.LocWithIdx, v L.AbstractValue) {
				if s := v.PointerValue().Size(); s > pts {
					pts = s
				}
				if s := v.TraceValue().Size(); s > traces {
					traces = s
				}
			})

			msg += "Procedure: " + color.HiYellowString(r.proc.Name) + "\n"
			msg += "Summary height: " + color.GreenString(strconv.Itoa(r.sum.Height())) + "\n"
			msg += "Memory bindings: " + color.GreenString(strconv.Itoa(r.sum.Memory().Size())) + "\n"
			msg += "Conditions: " + color.GreenString(strconv.Itoa(r.sum.Conditions().Size())) + "\n"
			msg += "Largest points-to set: " + color.GreenString(strconv.Itoa(pts)) + "\n"
			msg += "Largest trace set: " + color.GreenString(strconv.Itoa(traces)) + "\n\n"
		}
		msg += "================ Results ====================="
		fmt.Println(msg)

	// conditions-to-dot : visualizes the provenance of every condition
	// the analysis generated, decided or pending.
	case task.IsConditionsToDot():
		results, _ := pl.summaries()

		conds := L.Elements().Conditions()
		for _, r := range results {
			conds = conds.MonoJoin(r.sum.Conditions())
		}

		if opts.Visualize() {
			dotg.ConditionGraph(pl.prog.Name, conds).ShowDot()
		} else {
			image_path := dotg.BuildGraph(pl.prog.Name, conds)
			fmt.Println(image_path)
		}

	// positions : prints the procedures of the program with the source
	// position of every node.
	case task.IsPosition():
		for _, proc := range pl.prog.Procs {
			fmt.Println(color.HiYellowString(proc.Name), "at", proc.P)
			for _, n := range proc.Nodes {
				fmt.Printf("  %d: %s\n", n.Index, n.P)
			}
			fmt.Println()
		}
	}
}
