// Package errors provides structured, actionable errors for the urlquery
// server and CLI.
//
// # Error Categories
//
//   - config: configuration file or environment problems
//   - query: unreadable query strings and search params
//   - request: malformed HTTP bodies and parameters
//   - protocol: WebSocket session and command errors
//   - cli: command line usage errors
//
// # Error Codes
//
// Each error has a code (e.g. "Q010") that maps to a short message, a
// longer explanation and an HTTP status.
//
// # Usage
//
//	err := errors.New("Q010").
//	    WithInput("filter[name]=%zz", 13).
//	    WithSuggestion("Percent-encode literal % signs as %25")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR Q010: Malformed query string
//	//
//	//     filter[name]=%zz
//	//                  ^
//	//
//	//   Hint: Percent-encode literal % signs as %25
package errors
