package snapshots

import (
	"os"

	"facegate.io/infrastructure/env"
	"facegate.io/infrastructure/logger"
	"facegate.io/infrastructure/snapshots/azure"
	"facegate.io/infrastructure/snapshots/disk"
	"facegate.io/infrastructure/snapshots/types"
)

// SnapshotArchive is nil when FACEGATE_SNAPSHOTS is not enabled; callers
// must check Enabled first.
var SnapshotArchive types.SnapshotArchiverType

// Enabled reports whether denied-frame archival is turned on.
func Enabled() bool {
	return SnapshotArchive != nil
}

// InitialiseSnapshotArchive wires the disk archiver and, when the Azure
// variables are present, the blob offload on top of it.
func InitialiseSnapshotArchive() {
	if env.Get("FACEGATE_SNAPSHOTS", "") != "enabled" {
		return
	}

	archivers := []types.SnapshotArchiverType{
		&disk.DiskArchiver{Dir: env.Get("FACEGATE_SNAPSHOT_DIR", "snapshots")},
	}

	if os.Getenv("AZURE_STORAGE_ACCOUNT_NAME") != "" && os.Getenv("AZURE_STORAGE_ACCOUNT_KEY") != "" {
		archivers = append(archivers, &azure.AzureBlobArchiver{
			AccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey:    os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
			ContainerName: env.Get("AZURE_CONTAINER_NAME", "facegate-snapshots"),
		})
	}

	SnapshotArchive = &multiArchiver{archivers: archivers}
	logger.Info("snapshot archive initialized", logger.LoggerOptions{
		Key:  "backends",
		Data: len(archivers),
	})
}

// multiArchiver fans writes out to every configured backend. A backend
// failure logs and never affects the verification outcome.
type multiArchiver struct {
	archivers []types.SnapshotArchiverType
}

func (m *multiArchiver) Archive(attemptID string, jpegBytes []byte) error {
	for _, archiver := range m.archivers {
		if err := archiver.Archive(attemptID, jpegBytes); err != nil {
			logger.Error("snapshot archive failed", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "attemptID",
				Data: attemptID,
			})
		}
	}
	return nil
}

func (m *multiArchiver) Delete(attemptID string) error {
	for _, archiver := range m.archivers {
		if err := archiver.Delete(attemptID); err != nil {
			logger.Error("snapshot delete failed", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}
	return nil
}
