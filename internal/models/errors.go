package models

import (
	"errors"
	"fmt"
)

var (
	ErrInternal            = errors.New("internal server error")
	ErrMethodNotAllowed    = errors.New("method not allowed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidParams       = errors.New("invalid params")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrUnauthorized        = errors.New("could not validate credentials")
	ErrNoFile              = errors.New("no file provided")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrFileNotFound        = errors.New("file not found")
	ErrReferenceNotCached  = errors.New("reference not cached")
)

// StorageError is returned by storage backends when the provider rejects or
// fails a call. It matches ErrStorageUnavailable under errors.Is.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrStorageUnavailable, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
