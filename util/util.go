package util

import (
	"log"
	"os"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls Logger.Printf.
var Logging = false

// Logger is where Logf goes.  Tests can point it elsewhere.
var Logger = log.New(os.Stderr, "", log.LstdFlags)

// Logf is a silly utility function that calls Logger.Printf if
// Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	Logger.Printf(format, args...)
}
