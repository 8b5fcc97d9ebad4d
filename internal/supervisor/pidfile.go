// Package supervisor guards against concurrent daemon instances with a
// pidfile. A stale file (dead or recycled pid) is taken over silently;
// a live one refuses startup.
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrAlreadyRunning means a live daemon owns the pidfile.
var ErrAlreadyRunning = errors.New("another instance is already running")

// PIDFile is an acquired single-instance lock.
type PIDFile struct {
	path string
}

// Acquire writes this process's pid to path after checking that any
// recorded pid is no longer alive.
func Acquire(path string) (*PIDFile, error) {
	if pid, ok := readPID(path); ok && pid != os.Getpid() {
		alive, err := process.PidExists(int32(pid))
		if err == nil && alive {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	contents := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return nil, err
	}
	return &PIDFile{path: path}, nil
}

// Release removes the pidfile.
func (p *PIDFile) Release() error {
	return os.Remove(p.path)
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
