//go:build windows

package token

import "os"

// lockFile is a no-op on Windows; refreshes there are not serialized across processes.
func lockFile(_ *os.File) error {
	return nil
}

// unlockFile is a no-op on Windows.
func unlockFile(_ *os.File) error {
	return nil
}
