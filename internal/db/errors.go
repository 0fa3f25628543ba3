// ABOUTME: Error taxonomy for the storage engine
// ABOUTME: Sentinel for uninitialized access plus typed init and operation errors
package db

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by every note operation called before
// Initialize succeeds or after Close.
var ErrNotInitialized = errors.New("database not initialized")

// InitializationError reports that the backing file could not be opened or a
// migration failed. The Store is left uninitialized.
type InitializationError struct {
	Path string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize database %s: %v", e.Path, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// OperationError reports that SQLite rejected a note operation.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}
