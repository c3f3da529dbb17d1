// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitError carries a specific exit code out of run(). Fatal exits
// with Code instead of 1 when it finds one in the error chain.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Fatal writes "error: err" to stderr and exits with code 1, or with
// the code of an *ExitError in err's chain.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes the error line and returns the exit code.
func report(w io.Writer, err error) int {
	code := 1
	var exitError *ExitError
	if errors.As(err, &exitError) {
		code = exitError.Code
		if exitError.Err == nil {
			return code
		}
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return code
}
