// Completion: 100% - Platform support complete
//go:build linux || darwin
// +build linux darwin

package engine

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LoadExecutable maps the input file read-only for the duration of
// discovery and extraction (spec's "single immutable buffer" resource
// model). The returned closer must be called exactly once when done.
func LoadExecutable(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &IoErr{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, &IoErr{Op: "stat", Path: path, Err: err}
	}
	size := st.Size()
	if size == 0 {
		return nil, nil, &IoErr{Op: "read", Path: path, Err: fmt.Errorf("empty file")}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, &IoErr{Op: "mmap", Path: path, Err: err}
	}

	closer := func() error { return unix.Munmap(data) }
	return data, closer, nil
}
