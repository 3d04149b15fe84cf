package shared

import "fmt"

// LinkageLockKey builds the advisory lock key guarding one source document.
func LinkageLockKey(kind string, sourceID int64) string {
	return fmt.Sprintf("gl:linkage:%s:%d", kind, sourceID)
}

// IntegritySnapshotKey builds redis keys for cached integrity snapshots.
func IntegritySnapshotKey(fiscalYear int) string {
	return fmt.Sprintf("gl:integrity:fy:%d:snapshot", fiscalYear)
}
