package utils

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

type options struct {
	widenBound   uint
	minlen       uint
	nodesep      float64
	function     string
	outputFormat string
	modelConfig  string
	task         string
	logai        bool
	metrics      bool
	noColorize   bool
	verbose      bool
	extended     bool
	visualize    bool
	noAbort      bool
}

const (
	_CHECK = iota
	_SUMMARIES
	_LATTICE_METRICS
	_CONDITIONS_TO_DOT
	_POSITION
)

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

var task = []struct{ flag, explanation string }{{
	"check",
	"Run the abstract interpretation and report the conditions gathered for each analyzed procedure",
}, {
	"summaries",
	"Run the abstract interpretation and pretty-print the full procedure summaries (abstract memory and conditions)",
}, {
	"lattice-metrics",
	"Collect metrics on abstract value components, e. g. location set and trace sizes",
}, {
	"conditions-to-dot",
	"Create a graph of the provenance traces attached to each gathered condition",
}, {
	"positions",
	"Print all procedures found, and the position of each node",
}}

var opts = &options{}

type optInterface struct{}

type taskInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) NoColorize() bool {
	return opts.noColorize
}

func (optInterface) WidenBound() int {
	return int(opts.widenBound)
}

func (optInterface) WithinWidenBound(i int) bool {
	return i < int(opts.widenBound)
}

func (optInterface) Minlen() uint {
	return opts.minlen
}
func (optInterface) Nodesep() float64 {
	return opts.nodesep
}
func (optInterface) Function() string {
	return opts.function
}
func (optInterface) OutputFormat() string {
	return opts.outputFormat
}
func (optInterface) ModelConfig() string {
	return opts.modelConfig
}
func (optInterface) LogAI() bool {
	return opts.logai
}
func (optInterface) Task() taskInterface {
	return taskInterface{}
}
func (taskInterface) IsCheck() bool {
	return opts.task == task[_CHECK].flag
}
func (taskInterface) IsSummaries() bool {
	return opts.task == task[_SUMMARIES].flag
}
func (taskInterface) IsLatticeMetrics() bool {
	return opts.task == task[_LATTICE_METRICS].flag
}
func (taskInterface) IsConditionsToDot() bool {
	return opts.task == task[_CONDITIONS_TO_DOT].flag
}
func (taskInterface) IsPosition() bool {
	return opts.task == task[_POSITION].flag
}
func (optInterface) Metrics() bool {
	return opts.metrics
}
func (optInterface) Verbose() bool {
	return opts.verbose
}
func (optInterface) Extended() bool {
	return opts.extended
}
func (optInterface) Visualize() bool {
	return opts.visualize
}
func (optInterface) NoAbort() bool {
	return opts.noAbort
}

func init() {
	taskFlag := "\n"
	for _, task := range task {
		taskFlag += task.flag + " -- " + task.explanation + "\n"
	}
	taskFlag += "\n"

	flag.UintVar(&(opts.minlen), "minlen", 2, "Minimum edge length (for wider output).")
	flag.Float64Var(&(opts.nodesep), "nodesep", 0.35, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	flag.StringVar(&(opts.function), "fun", "main", "target a specific procedure w. r. t. the given task.\n"+
		"- Use '.' to perform targetted analysis on all procedures of the program.\n")
	flag.StringVar(&(opts.outputFormat), "format", "svg", "output file format [svg | png | jpg | ...]")
	flag.StringVar(&(opts.modelConfig), "model-config", "", "path to a YAML catalog of extra library models (taint sources, format sinks, container types)")
	flag.StringVar(&(opts.task), "task", task[_CHECK].flag, "Set the task to do during execution. Options:"+taskFlag)
	flag.BoolVar(&(opts.logai), "ai-logging", false, "Enable logging of specific events during abstract interpretation")
	flag.BoolVar(&(opts.metrics), "metrics", false, "Enable collection of performance metrics for abstract interpretation")
	flag.BoolVar(&(opts.noColorize), "no-colorize", false, "Disable pretty printer colorization")
	flag.BoolVar(&(opts.extended), "extended", false, "Include additional information, e. g. provenance traces on printed conditions.")
	flag.BoolVar(&(opts.verbose), "verbose", false, "enable verbose output")
	flag.BoolVar(&(opts.visualize), "visualize", false, "enable visualization via XDot")
	flag.BoolVar(&(opts.noAbort), "no-abort", false, "disable aborts upon critical precision loss")
	flag.UintVar(&(opts.widenBound), "widen-bound", 3, "set the number of passes over a loop head before widening kicks in")

	// Set up logging
	log.SetFlags(log.Ltime | log.Lshortfile)
}

func ParseArgs() {
	// Calling flag.Parse in init messes up unit tests.
	// See https://stackoverflow.com/questions/60235896/flag-provided-but-not-defined-test-v
	flag.Parse()

	validTask := false
	for _, task := range task {
		if task.flag == opts.task {
			validTask = true
			break
		}
	}

	if !validTask {
		log.Fatalf("Value \"%s\" is not valid for -task", opts.task)
	}

	if Opts().Task().IsConditionsToDot() {
		opts.noColorize = true
	}
}

func (optInterface) AnalyzeAllFuncs() bool {
	return opts.function == "."
}

func (optInterface) OnVerbose(do func()) {
	if Opts().Verbose() {
		do()
	}
}
