package fresh

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned when a predicate runs longer than
	// PredicateTimeout.
	Interrupted = errors.New(InterruptedMessage)

	// PredicateTimeout bounds each predicate execution.
	PredicateTimeout = 100 * time.Millisecond
)

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func compilePredicate(src string) (*goja.Program, error) {
	p, err := goja.Compile("predicate", wrapSrc(src), true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + src)
	}
	return p, nil
}

// runPredicate uses a fresh runtime for every call since a
// goja.Runtime isn't safe for concurrent use.
func runPredicate(p *goja.Program, service, operation string) (bool, error) {
	o := goja.New()
	o.Set("_", map[string]interface{}{
		"service":   service,
		"operation": operation,
	})

	timer := time.AfterFunc(PredicateTimeout, func() {
		o.Interrupt(InterruptedMessage)
	})
	v, err := o.RunProgram(p)
	timer.Stop()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return false, Interrupted
		}
		return false, err
	}

	switch vv := v.Export().(type) {
	case bool:
		return vv, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("predicate returned a %T, not a boolean", vv)
	}
}
