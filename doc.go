// Package corrcheck checks that service programs can route every
// message to the session it belongs to.
//
// A program's correlation sets name the variables whose values
// identify a session.  The checker in package 'core' makes sure each
// session starts by initialising those variables with fresh values,
// never initialises them twice, and only receives correlated
// messages once they're set.  Documents are read by package
// 'loader', and command-line tools are in `cmd`.
package corrcheck
