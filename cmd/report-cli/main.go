// Command report-cli runs decision-service auctions from the terminal and prints the report.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitCallFailed = 1
	ExitError      = 2
)

// CallError reports that the decision service call failed. Its message is the store's error text.
type CallError struct {
	Message string
}

func (e *CallError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var callErr *CallError
		if errors.As(err, &callErr) {
			os.Exit(ExitCallFailed)
		}
		os.Exit(ExitError)
	}
}
