// Package errors turns failures from the binding layer into actionable CLI
// messages.
//
// Every known failure has a code (for example "SB002") that maps to a short
// message, a longer explanation and a hint. Classify recognizes the
// sentinel errors of the bind, host, loop and config packages:
//
//	if err := run(); err != nil {
//	    errors.Print(os.Stderr, errors.Classify(err))
//	}
//
//	// ERROR SB003: Duplicate binding name
//	//
//	//   statebind: binding "count": duplicate binding name
//	//
//	//   Each entry passed to Connect must have a unique name.
//	//
//	//   Hint: Rename one of the entries or drop the duplicate.
package errors
