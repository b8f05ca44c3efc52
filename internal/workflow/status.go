package workflow

import "fmt"

// StatusFunc receives one human-readable progress line per workflow step.
// The core makes no assumption about how or whether it is rendered.
type StatusFunc func(message string)

// DecisionFunc is asked whether the batch should continue after a pull
// request ends in a non-merged outcome. A nil function means always continue.
type DecisionFunc func(prNumber int, reason string) bool

func (f StatusFunc) printf(format string, args ...interface{}) {
	if f != nil {
		f(fmt.Sprintf(format, args...))
	}
}
