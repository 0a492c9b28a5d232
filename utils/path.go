package utils

import (
	"flag"
)

// MakeTargets returns the names of the programs the driver should
// analyze: the non-flag arguments passed to cat. An empty result means
// every built-in program.
func MakeTargets() []string {
	return flag.Args()
}
