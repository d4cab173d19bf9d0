package ports

import "os/exec"

// EditorOpener opens tagged files in an external editor
type EditorOpener interface {
	// OpenFile runs the editor on path and waits for it to exit
	OpenFile(path string) error

	// Command returns the editor process without starting it, for callers
	// that hand the terminal over themselves (bubbletea's ExecProcess)
	Command(path string) (*exec.Cmd, error)
}

// FileLauncher opens files with the desktop's default application
type FileLauncher interface {
	Launch(path string) error
}
