package launcher

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Launcher implements ports.FileLauncher with the platform's "open" command
type Launcher struct {
	goos string
}

// NewLauncher creates a launcher for the running platform
func NewLauncher() *Launcher {
	return &Launcher{goos: runtime.GOOS}
}

// Launch hands path to the default application and returns once it started
func (l *Launcher) Launch(path string) error {
	cmd, err := l.Command(path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", path, err)
	}
	// The child outlives us on some platforms; reap it when it does exit
	go cmd.Wait()
	return nil
}

// Command returns the process that opens path, without starting it
func (l *Launcher) Command(path string) (*exec.Cmd, error) {
	switch l.goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", l.goos)
	}
}
