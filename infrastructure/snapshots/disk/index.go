package disk

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskArchiver writes denied-frame JPEGs under a local directory. Files are
// 0600: the frames are biometric data and stay readable by the daemon only.
type DiskArchiver struct {
	Dir string
}

func (archiver *DiskArchiver) Archive(attemptID string, jpegBytes []byte) error {
	if err := os.MkdirAll(archiver.Dir, 0o700); err != nil {
		return fmt.Errorf("could not create snapshot directory: %w", err)
	}
	return os.WriteFile(archiver.path(attemptID), jpegBytes, 0o600)
}

func (archiver *DiskArchiver) Delete(attemptID string) error {
	err := os.Remove(archiver.path(attemptID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (archiver *DiskArchiver) path(attemptID string) string {
	return filepath.Join(archiver.Dir, attemptID+".jpg")
}
