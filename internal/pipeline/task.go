package pipeline

import "context"

// Status is the terminal state of one task in a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusSkipped marks tasks never attempted because a dependency
	// failed or was itself skipped.
	StatusSkipped Status = "skipped"
)

// Task is one unit of pipeline work. Tasks with disjoint dependency
// chains run concurrently; a task runs only after every task it
// depends on succeeded.
type Task struct {
	Name      string
	DependsOn []string
	Run       func(ctx context.Context) error
}

// TaskResult records how one task ended.
type TaskResult struct {
	Task     string
	Status   Status
	Attempts int
	Err      error
}
