// Package enrich drives the rate-limited crawl that supplements imported
// records with financial filings and registry detail pages.
package enrich

// TaskState is the lifecycle state of one enrichment task.
type TaskState string

const (
	StateQueued           TaskState = "queued"
	StateFetching         TaskState = "fetching"
	StateExtracting       TaskState = "extracting"
	StateSuccess          TaskState = "success"
	StateNoData           TaskState = "no_data"
	StateExtractionFailed TaskState = "extraction_failed"
	StateFailed           TaskState = "failed"
)

// Terminal reports whether the state ends a task's lifecycle.
func (s TaskState) Terminal() bool {
	switch s {
	case StateSuccess, StateNoData, StateExtractionFailed, StateFailed:
		return true
	}
	return false
}

// Task is one queued enrichment request. A task is owned by exactly one
// worker from dequeue to its terminal state; retries stay inside that
// worker with the count incremented.
type Task struct {
	EnterpriseNr string
	Source       string
	Retries      int
}

// Outcome is the terminal result of one task.
type Outcome struct {
	Task    Task
	State   TaskState
	Retries int
	Err     error
}
