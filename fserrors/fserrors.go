// Package fserrors classifies engine errors into the taxonomy
// an applier needs: parse/invariant/local-I-O errors are fatal, network
// errors during "+" lines are recoverable. There is no separate class
// for checksum mismatches on download, and no setting to choose one:
// the applier treats such a mismatch as fatal.
//
// Grounded on rclone/fs/fserrors, which wraps the same three axes
// (fatal, no-retry, no-low-level-retry) around a plain error chain
// instead of github.com/pkg/errors (see fs/fserrors/error_test.go's
// withMessage compatibility shim for that migration history).
package fserrors

import "errors"

// wrapped is the common shape for every classification wrapper below.
type wrapped struct {
	err error
	kind string
}

func (w *wrapped) Error() string { return w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
func (w *wrapped) Cause() error { return w.err }

// fatalError marks an error as unrecoverable: the run must terminate.
type fatalError struct{ *wrapped }

// noRetryError marks an error that the caller should record and move
// past without retrying the operation that produced it - used for
// network errors during "+" lines.
type noRetryError struct{ *wrapped }

// Fatal wraps err so IsFatal reports true. A nil err returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{&wrapped{err: err, kind: "fatal"}}
}

// NoRetry wraps err so IsNoRetry reports true. A nil err returns nil.
func NoRetry(err error) error {
	if err == nil {
		return nil
	}
	return &noRetryError{&wrapped{err: err, kind: "no-retry"}}
}

// IsFatal reports whether err (or anything it wraps) was marked Fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}

// IsNoRetry reports whether err (or anything it wraps) was marked
// NoRetry - i.e. a network error during a download that should disable
// further network operations but not abort the whole run.
func IsNoRetry(err error) bool {
	var n *noRetryError
	return errors.As(err, &n)
}

// Cause unwraps err down to its root, mirroring rclone's
// Cause()-chain walk (fs/fserrors.Cause).
func Cause(err error) error {
	for {
		type causer interface{ Cause() error }
		c, ok := err.(causer)
		if !ok {
			return err
		}
		next := c.Cause()
		if next == nil {
			return err
		}
		err = next
	}
}
