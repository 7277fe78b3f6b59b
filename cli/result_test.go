package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestExitError(t *testing.T) {
	err := failed()
	assert.EqualError(t, err, "exit status 1")

	wrapped := fmt.Errorf("validate: %w", err)
	var exitErr *ExitError
	assert.True(t, errors.As(wrapped, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}
