package system

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/winget-bootstrap/internal/logger"
)

// ErrUnsupportedOS indicates the operation needs a Windows host.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// Processes terminates running programs by executable name.
type Processes struct{}

// Terminate kills every process whose executable matches name (case-insensitive),
// except the current one, and returns how many were killed.
func (Processes) Terminate(ctx context.Context, name string) (int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return 0, err
	}

	var (
		thisProcessID = os.Getpid()
		killed        int
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !strings.EqualFold(process.Executable(), name) {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return killed, err
		}

		if err = runningProcess.Kill(); err != nil {
			return killed, err
		}

		logger.DebugKV(ctx, "Terminated running process", "name", process.Executable(), "pid", process.Pid())

		killed++
	}

	return killed, nil
}
