package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUserID is returned before any request when the run has no user
	ErrMissingUserID = errors.New("user id is required")

	// ErrEngineNotConfigured is returned when a run needs the workflow engine
	// and no base URL or webhook key is set
	ErrEngineNotConfigured = errors.New("workflow engine is not configured")

	// ErrRunInProgress is returned when the same user already has a run of
	// the same kind outstanding
	ErrRunInProgress = errors.New("a run of this pipeline is already in progress")
)

// DispatchError reports that the engine did not accept a trigger.
// StatusCode is zero when the request never got a response.
type DispatchError struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("dispatch %s pipeline: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("dispatch %s pipeline: status %d: %s", e.Kind, e.StatusCode, e.Body)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ExecutionFailedError reports a terminal failure state from the engine
type ExecutionFailedError struct {
	ExecutionID string
	State       string
}

func (e *ExecutionFailedError) Error() string {
	return fmt.Sprintf("execution %s ended in state %s", e.ExecutionID, e.State)
}

// TimeoutError reports that polling gave up before a terminal state
type TimeoutError struct {
	ExecutionID string
	Attempts    int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution %s did not finish after %d polls", e.ExecutionID, e.Attempts)
}
