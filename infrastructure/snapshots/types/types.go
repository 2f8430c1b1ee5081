package types

// SnapshotArchiverType stores denied verification frames keyed by attempt
// id. Granted and enrollment frames are never archived.
type SnapshotArchiverType interface {
	Archive(attemptID string, jpegBytes []byte) error
	Delete(attemptID string) error
}
