package ioh

import (
	"fmt"
	"os/exec"
)

// SpawnWrite spawns command (via /bin/sh -c) and returns a Handle
// writing to its stdin, matching the "|command args" write-form
// transport URI of spec §6.2. The caller is responsible for reading
// the child's stdout for a REDIRECT message and switching to the
// socket it names (pkg/container implements that sequence).
func SpawnWrite(command string) (*Handle, *exec.Cmd, error) {
	cmd := exec.Command("/bin/sh", "-c", command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ioh: spawn %q: stdin pipe: %w", command, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ioh: spawn %q: stdout pipe: %w", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ioh: spawn %q: %w", command, err)
	}

	h := New(
		Caps{CanWrite: true, CanRead: true, IsPipe: true},
		stdout.Read,
		stdin.Write,
		nil, nil,
		func() error {
			stdinErr := stdin.Close()
			stdoutErr := stdout.Close()
			if stdinErr != nil {
				return stdinErr
			}
			return stdoutErr
		},
		nil,
	)
	h.Descriptor = descriptorFor("|"+command, "", 0)
	return h, cmd, nil
}

// SpawnRead spawns command and returns a Handle reading its stdout,
// matching the "<command args" read-form transport URI.
func SpawnRead(command string) (*Handle, *exec.Cmd, error) {
	cmd := exec.Command("/bin/sh", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ioh: spawn %q: stdout pipe: %w", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ioh: spawn %q: %w", command, err)
	}

	h := New(
		Caps{CanRead: true, IsPipe: true},
		stdout.Read,
		nil, nil, nil,
		stdout.Close,
		nil,
	)
	h.Descriptor = descriptorFor("<"+command, "", 0)
	return h, cmd, nil
}
