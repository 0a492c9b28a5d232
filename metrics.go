package main

import (
	"fmt"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
)

func gatherMetrics(pl pipeline, results []procResult) {
	if !opts.Metrics() || len(results) == 0 {
		return
	}

	msg := "================ Results =====================\n\n"

	coveredCalls, totalCalls := 0, 0
	var notCovered []*cir.Node

	for _, r := range results {
		msg += "Procedure: " + r.proc.Name + "\n"
		msg += "Nodes: " + fmt.Sprint(len(r.proc.Nodes)) + "\n"
		msg += "Summary height: " + fmt.Sprint(r.sum.Height()) + "\n"
		msg += "Memory bindings: " + fmt.Sprint(r.sum.Memory().Size()) + "\n"

		conds := r.sum.Conditions()
		reported := 0
		conds.ForEach(func(c L.Condition) {
			if c.Reported() {
				reported++
			}
		})
		msg += "Conditions: " + fmt.Sprint(conds.Size()) +
			" (" + fmt.Sprint(reported) + " reported)\n"

		for _, n := range r.proc.Nodes {
			if n.Kind != cir.NCall {
				continue
			}
			totalCalls++
			if _, found := pl.reg.Lookup(n.Callee); found {
				coveredCalls++
			} else {
				notCovered = append(notCovered, n)
			}
		}

		msg += "Procedure finished\n\n"
	}

	msg += "Call sites covered: " + fmt.Sprint(coveredCalls) + "/" + fmt.Sprint(totalCalls) + "\n"
	if len(notCovered) > 0 {
		msg += "Not covered: {\n"
		for _, n := range notCovered {
			msg += "  " + n.Callee + ":" + n.P.String() + "\n"
		}
		msg += "}\n"
	}

	msg += "\n================ Results ====================="
	fmt.Println(msg)
}
