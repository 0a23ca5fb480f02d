package types

// Status is the lifecycle state of a long running component such as the
// catalog actor or an import.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsActive returns true if the status indicates an ongoing operation
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// IsComplete returns true if the status indicates a finished operation
func (s Status) IsComplete() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

func (s Status) IsSuccess() bool {
	return s == StatusCompleted
}
