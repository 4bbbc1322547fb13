package util

import "fmt"

// PetroError is the base error type for every failure raised by the
// storage core. It carries a human message plus the underlying cause so
// callers can still use errors.Is/errors.As against it.
type PetroError struct {
	Message string
	Err     error
}

func (e *PetroError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PetroError) Unwrap() error {
	return e.Err
}

// BufferpoolExhaustedError is returned by the buffer pool's acquisition
// APIs when every frame is pinned and nothing is evictable. Callers must
// treat it as "try again later", never retry in a tight loop on the same
// goroutine that's holding guards.
type BufferpoolExhaustedError struct {
	*PetroError
}

func NewBufferpoolExhaustedError(pageId int64) *BufferpoolExhaustedError {
	return &BufferpoolExhaustedError{
		PetroError: &PetroError{Message: fmt.Sprintf("no frame available for page %d", pageId)},
	}
}

// DuplicateKeyError is returned when an index insert would create a
// second entry for a key the tree treats as unique.
type DuplicateKeyError struct {
	*PetroError
}

func NewDuplicateKeyError(key any) *DuplicateKeyError {
	return &DuplicateKeyError{
		PetroError: &PetroError{Message: fmt.Sprintf("duplicate key: %v", key)},
	}
}

// NotFoundError is returned when an index lookup or remove targets a key
// that does not exist.
type NotFoundError struct {
	*PetroError
}

func NewNotFoundError(what string) *NotFoundError {
	return &NotFoundError{PetroError: &PetroError{Message: what}}
}

// InvalidOperationError covers misuse of the API that isn't a storage
// fault: advancing an exhausted iterator, a write descent that runs out
// of held ancestors, or a page whose encoding exceeds PAGE_SIZE.
type InvalidOperationError struct {
	*PetroError
}

func NewInvalidOperationError(what string) *InvalidOperationError {
	return &InvalidOperationError{PetroError: &PetroError{Message: what}}
}

// IoError wraps a failure surfaced by the disk manager or scheduler.
type IoError struct {
	*PetroError
}

func NewIoError(op string, err error) *IoError {
	return &IoError{PetroError: &PetroError{Message: fmt.Sprintf("io error during %s", op), Err: err}}
}
