package main

import (
	"fmt"
	"log"
	"sort"

	ai "github.com/cs-au-dk/cat/analysis/absint"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	tu "github.com/cs-au-dk/cat/testutil"
	"github.com/cs-au-dk/cat/utils"

	"github.com/fatih/color"
)

var (
	opts = utils.Opts()
	task = opts.Task()
)

func main() {
	utils.ParseArgs()

	cfg, err := ai.LoadModelConfig(opts.ModelConfig())
	if err != nil {
		log.Fatalln("Failed loading model configuration:", err)
	}

	for _, fx := range targetFixtures() {
		pl := pipeline{
			prog:  fx.Prog,
			facts: fx.Facts,
			reg:   ai.DefaultRegistry(cfg),
		}

		switch {
		case task.IsCheck():
			checkTask(fx, pl)
		case task.IsSummaries():
			summariesTask(fx, pl)
		default:
			pl.secondaryTask()
		}
	}
}

// targetFixtures resolves the command line targets against the
// built-in program catalog. No targets selects the whole catalog.
func targetFixtures() []tu.Fixture {
	targets := utils.MakeTargets()
	if len(targets) == 0 {
		return tu.Fixtures()
	}

	fixtures := make([]tu.Fixture, 0, len(targets))
	for _, name := range targets {
		fx, found := tu.FixtureNamed(name)
		if !found {
			log.Fatalln("Unknown program:", name)
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures
}

// checkTask runs the checker over one program and reports the decided
// conditions in source order.
func checkTask(fx tu.Fixture, pl pipeline) {
	fmt.Println()
	log.Println("Checking", color.CyanString(fx.Name()), "...")

	results, findings := pl.summaries()

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i].cond, findings[j].cond
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Col != b.Pos.Col {
			return a.Pos.Col < b.Pos.Col
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Loc.String() < b.Loc.String()
	})

	if len(findings) == 0 {
		log.Println(color.GreenString("No conditions to report"))
	}
	for _, f := range findings {
		reportFinding(f)
	}

	gatherMetrics(pl, results)
}

func condMessage(k L.CondKind) string {
	switch k {
	case L.CondOverflow:
		return "possible buffer overflow from attacker controlled input"
	case L.CondFormat:
		return "attacker controlled format string"
	case L.CondUninit:
		return "use of possibly uninitialized value"
	}
	return k.String()
}

func reportFinding(f finding) {
	c := f.cond
	fmt.Println(color.HiRedString(condMessage(c.Kind)))
	fmt.Println("   value:", c.Loc)
	fmt.Println("   procedure:", color.HiYellowString(f.proc.Name))
	fmt.Println("   position:", c.Pos)

	if opts.Extended() {
		for _, tr := range c.Traces().Entries() {
			fmt.Println("   trace:", tr)
		}
	}
	fmt.Println()
}

// summariesTask prints the computed procedure summaries, restricted to
// the function selected on the command line.
func summariesTask(fx tu.Fixture, pl pipeline) {
	fmt.Println()
	log.Println("Summaries for", color.CyanString(fx.Name()))

	results, _ := pl.summaries()
	for _, r := range results {
		if !opts.AnalyzeAllFuncs() && r.proc.Name != opts.Function() {
			continue
		}
		fmt.Println(color.HiYellowString(r.proc.Name), "=>")
		fmt.Println(r.sum.String())
		fmt.Println()
	}
}
