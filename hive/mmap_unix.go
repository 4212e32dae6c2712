//go:build unix

package hive

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps path read-only and returns its contents along with a function
// that unmaps it, using golang.org/x/sys/unix so the navigator shares the
// one dependency the teacher's hive/dirty package already pulls in for
// msync, instead of the bare syscall package.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil, fmt.Errorf("hive: %s is empty", path)
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("hive: file too large to map (%d bytes)", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("hive: mmap: %w", err)
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		return unix.Munmap(data)
	}
	return data, cleanup, nil
}
