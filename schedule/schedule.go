// Package schedule provides single-shot and repeating deferred callbacks
// that can be cancelled through the Task they return.
package schedule

import "time"

// Task is a pending callback. Stop reports whether the call prevented at
// least one future invocation; it returns false if the task already fired
// (single-shot) or was already stopped.
type Task interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Implementations must not invoke f
// synchronously from AfterFunc or Every.
type Scheduler interface {
	// AfterFunc calls f once, d from now. Negative delays are treated as zero.
	AfterFunc(d time.Duration, f func()) Task
	// Every calls f every d until the task is stopped. d must be positive.
	Every(d time.Duration, f func()) Task
}
