package orchestrator

import "fmt"

// ArgumentError indicates the CLI was invoked with an invalid
// combination of flags.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// FileError indicates the firmware file could not be opened or read.
type FileError struct {
	Path   string
	Reason string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
