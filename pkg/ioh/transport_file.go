package ioh

import (
	"fmt"
	"os"
)

// OpenFileRead opens path for reading as a seekable Handle.
func OpenFileRead(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ioh: open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ioh: stat %q: %w", path, err)
	}

	h := handleFromOSFile(f, Caps{CanRead: true, CanSeek: true, IsRegular: true})
	h.Descriptor = descriptorFor("file://"+path, "", info.Size())
	return h, nil
}

// CreateFileWrite creates (or truncates) path for writing as a
// seekable Handle.
func CreateFileWrite(path string) (*Handle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ioh: create %q: %w", path, err)
	}
	h := handleFromOSFile(f, Caps{CanWrite: true, CanSeek: true, IsRegular: true})
	h.Descriptor = descriptorFor("file://"+path, "", 0)
	return h, nil
}

func handleFromOSFile(f *os.File, caps Caps) *Handle {
	return New(
		caps,
		f.Read,
		f.Write,
		func(offset int64, whence int) (int64, error) { return f.Seek(offset, whence) },
		nil,
		f.Close,
		f.Sync,
	)
}

// StdioHandle wraps stdin (read) or stdout (write) as a non-seekable
// pipe-classed Handle, matching the "-" transport URI of spec §6.2.
// Writing to a TTY-backed stdout is rejected, per the same section.
func StdioHandle(write bool) (*Handle, error) {
	if write {
		if info, err := os.Stdout.Stat(); err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
			return nil, fmt.Errorf("ioh: refusing to write GAVF to a terminal")
		}
		h := New(
			Caps{CanWrite: true, IsPipe: true},
			nil, os.Stdout.Write, nil, nil, nil, os.Stdout.Sync,
		)
		h.Descriptor = descriptorFor("-", "", 0)
		return h, nil
	}

	h := New(
		Caps{CanRead: true, IsPipe: true},
		os.Stdin.Read, nil, nil, nil, nil, nil,
	)
	h.Descriptor = descriptorFor("-", "", 0)
	return h, nil
}
