package ioh

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// OpenResult bundles a dialed Handle with the spawned child process,
// if the URI used a spawn form (so the caller can Wait() on it).
type OpenResult struct {
	Handle *Handle
	Cmd    *exec.Cmd
}

// OpenRead opens uri for reading, dispatching on the transport forms
// of spec §6.2: gavf://, gavf-unix://, a "<command" pipe spawn, "-"
// for stdin, or a bare local path.
func OpenRead(uri string, timeout time.Duration) (OpenResult, error) {
	switch {
	case uri == "-":
		h, err := StdioHandle(false)
		return OpenResult{Handle: h}, err

	case strings.HasPrefix(uri, "<"):
		h, cmd, err := SpawnRead(strings.TrimSpace(strings.TrimPrefix(uri, "<")))
		return OpenResult{Handle: h, Cmd: cmd}, err

	case strings.HasPrefix(uri, "gavf://"):
		h, err := DialTCP(strings.TrimPrefix(uri, "gavf://"), timeout)
		return OpenResult{Handle: h}, err

	case strings.HasPrefix(uri, "gavf-unix://"):
		h, err := DialUnix(strings.TrimPrefix(uri, "gavf-unix://"), timeout)
		return OpenResult{Handle: h}, err

	case strings.HasPrefix(uri, "gavf-tcpserv://"), strings.HasPrefix(uri, "gavf-unixserv://"):
		return OpenResult{}, fmt.Errorf("ioh: %q is a listener form, use ListenFromURI", uri)

	default:
		h, err := OpenFileRead(uri)
		return OpenResult{Handle: h}, err
	}
}

// OpenWrite opens uri for writing, mirroring OpenRead's dispatch for
// the symmetric write-side forms.
func OpenWrite(uri string, timeout time.Duration) (OpenResult, error) {
	switch {
	case uri == "-":
		h, err := StdioHandle(true)
		return OpenResult{Handle: h}, err

	case strings.HasPrefix(uri, "|"):
		h, cmd, err := SpawnWrite(strings.TrimSpace(strings.TrimPrefix(uri, "|")))
		return OpenResult{Handle: h, Cmd: cmd}, err

	case strings.HasPrefix(uri, "gavf://"):
		h, err := DialTCP(strings.TrimPrefix(uri, "gavf://"), timeout)
		return OpenResult{Handle: h}, err

	case strings.HasPrefix(uri, "gavf-unix://"):
		h, err := DialUnix(strings.TrimPrefix(uri, "gavf-unix://"), timeout)
		return OpenResult{Handle: h}, err

	default:
		h, err := CreateFileWrite(uri)
		return OpenResult{Handle: h}, err
	}
}

// ListenFromURI starts a listener for the gavf-tcpserv:// or
// gavf-unixserv:// forms.
func ListenFromURI(uri string) (*Listener, error) {
	switch {
	case strings.HasPrefix(uri, "gavf-tcpserv://"):
		return ListenTCP(strings.TrimPrefix(uri, "gavf-tcpserv://"))
	case strings.HasPrefix(uri, "gavf-unixserv://"):
		return ListenUnix(strings.TrimPrefix(uri, "gavf-unixserv://"))
	default:
		return nil, fmt.Errorf("ioh: %q is not a listener URI", uri)
	}
}

// IsSpawnWriteForm reports whether uri uses the "|command" form.
func IsSpawnWriteForm(uri string) bool { return strings.HasPrefix(uri, "|") }

// IsSpawnReadForm reports whether uri uses the "<command" form.
func IsSpawnReadForm(uri string) bool { return strings.HasPrefix(uri, "<") }
