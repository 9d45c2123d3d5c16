package networking

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
)

// Executor runs an external command, feeding stdin when it is not nil.
type Executor interface {
	Run(stdin io.Reader, name string, args ...string) ([]byte, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Run(stdin io.Reader, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("failed to find %s command: %w", name, err)
	}

	cmd := exec.Command(name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	return output.Bytes(), err
}
