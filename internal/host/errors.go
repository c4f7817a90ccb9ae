package host

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by the layout host.
var (
	// ErrTimeout indicates a computation did not settle within the deadline.
	ErrTimeout = errors.New("layout timed out")

	// ErrCompute indicates the computation itself failed.
	ErrCompute = errors.New("layout computation failed")

	// ErrClosed indicates the host was closed.
	ErrClosed = errors.New("layout host closed")

	// ErrWorkerTerminated indicates a worker that is gone: posted to after
	// termination, or exited without replying.
	ErrWorkerTerminated = errors.New("layout worker terminated")

	errUnsupported = errors.New("worker construction failed earlier")
)

// ComputeError carries the message of a failed computation. Err is set when
// the failure originated in this process, e.g. an input validation error.
type ComputeError struct {
	Message string
	Err     error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("layout computation failed: %s", e.Message)
}

func (e *ComputeError) Is(target error) bool {
	return target == ErrCompute
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when the worker did not reply in time.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("layout timed out after %s", e.After)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// IsTimeout returns true if the error indicates a layout timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsComputeError returns true if the computation failed, as opposed to
// timing out or being cancelled.
func IsComputeError(err error) bool {
	return errors.Is(err, ErrCompute)
}
