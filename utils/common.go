package utils

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
)

func TimeTrack(start time.Time, name string) {
	fmt.Printf("%s took %s\n", name, time.Since(start))
}

func VerbosePrint(format string, a ...interface{}) (n int, err error) {
	if Opts().Verbose() {
		return fmt.Printf(format, a...)
	}
	return 0, nil
}

// Warnf logs a recoverable analysis imprecision, e. g. a library model
// invoked with arguments it cannot make sense of. The analysis continues
// with a sound no-op after the warning.
func Warnf(format string, a ...interface{}) {
	log.Println(CanColorize(color.New(color.FgYellow).SprintFunc())(fmt.Sprintf(format, a...)))
}

// Atoi function that fatals instead of returing a tuple with an error
func Atoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalln(err)
	}
	return i
}

func Prompt() {
	bufio.NewReader(os.Stdin).ReadString('\n')
}
