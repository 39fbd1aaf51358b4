package constants

// JobStatus is the canonical status of an RSPL generation job.
type JobStatus string

// Stable values (these exact strings are stored and returned by the API).
const (
	JobStatusPending    JobStatus = "PENDING"    // created, pipeline not started
	JobStatusProcessing JobStatus = "PROCESSING" // pipeline running
	JobStatusCompleted  JobStatus = "COMPLETED"  // terminal: results available
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)

// IsTerminal reports whether no further transitions are allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
