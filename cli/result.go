package cli

import "fmt"

// ExitError asks main to exit with Code. The command has already reported
// the failure on stderr by the time it returns one.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// failed is the ExitError for content problems such as a filing that does
// not validate.
func failed() error {
	return &ExitError{Code: 1}
}
