// Package upload runs a queue of file uploads one at a time.
//
// A Manager validates submitted files against size and extension
// constraints, queues the accepted ones in submission order and hands them
// to a transport.Transport from a single drain goroutine. Progress,
// completion and failure are reported through Handlers and through the
// per-task future returned by Submit (Task.Done and Task.Result).
//
// The in-flight task can be cancelled with CancelCurrent; CancelAll also
// drops everything still pending without firing handlers for it. Tasks
// move through Pending, Uploading and then Completed or Error; any other
// transition is rejected with ErrInvalidTransition.
//
// Failed uploads are not retried unless WithRetries is given. Retries never
// apply to cancellations, timeouts or an expired session.
package upload
