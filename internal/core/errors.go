package core

import "fmt"

// The four failure categories every store operation can surface. Callers
// distinguish them with errors.As; no operation is ever retried.

// NetworkError means the request never reached the server.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the server answered with a non-2xx status.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
}

// NotFoundError means the target of a mutation no longer exists, e.g. a
// second delete of the same id.
type NotFoundError struct {
	ID   int64
	Type RecordType
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d (%s) not found", e.ID, e.Type)
}

// ValidationError is a client-side form check failure raised before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
