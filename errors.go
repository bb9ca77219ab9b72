package stagefs

import (
	"errors"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned when a path required to exist is absent from
	// the merged view.
	ErrNotFound = errors.New("file or directory does not exist")
	// ErrAlreadyExists is returned when the base filesystem reports a
	// collision. The overlay itself overwrites silently and never raises it.
	ErrAlreadyExists = errors.New("file or directory already exists")
	// ErrPermissionDenied is returned when the base filesystem denies
	// access. Overlay-only operations never raise it.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDirectoryNotEmpty is returned by the base filesystem when a
	// non-recursive delete hits a non-empty real directory.
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	// ErrIllegalOperationOnDirectory is returned when file content is read
	// from or written to a path holding a directory.
	ErrIllegalOperationOnDirectory = errors.New("illegal operation on a directory")
	// ErrOutOfRoot is returned when path resolution escapes the working root.
	ErrOutOfRoot = errors.New("path escapes the working root")
)

// pathErr wraps a taxonomy error with the operation and offending path.
// The result matches errors.Is against the wrapped sentinel.
func pathErr(op, path string, err error) error {
	return &os.PathError{Op: op, Path: path, Err: err}
}

// translateBaseError maps errors surfaced by the base filesystem onto the
// fixed taxonomy, keeping the original error reachable via errors.Unwrap.
// Errors that already carry a taxonomy sentinel pass through unchanged.
func translateBaseError(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case isTaxonomy(err):
		return err
	case errors.Is(err, os.ErrNotExist):
		return pathErr(op, path, ErrNotFound)
	case errors.Is(err, os.ErrExist):
		return pathErr(op, path, ErrAlreadyExists)
	case errors.Is(err, os.ErrPermission):
		return pathErr(op, path, ErrPermissionDenied)
	case isNotEmpty(err):
		return pathErr(op, path, ErrDirectoryNotEmpty)
	case isIsDir(err):
		return pathErr(op, path, ErrIllegalOperationOnDirectory)
	default:
		return pathErr(op, path, err)
	}
}

func isTaxonomy(err error) bool {
	for _, kind := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrPermissionDenied,
		ErrDirectoryNotEmpty,
		ErrIllegalOperationOnDirectory,
		ErrOutOfRoot,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// isNotEmpty detects ENOTEMPTY-class failures. syscall numbers differ per
// platform and afero backends wrap them inconsistently, so the message is
// matched as a fallback.
func isNotEmpty(err error) bool {
	return strings.Contains(err.Error(), "not empty")
}

// isIsDir detects EISDIR-class failures from backends that report them as
// plain errors rather than typed values.
func isIsDir(err error) bool {
	return strings.Contains(err.Error(), "is a directory")
}
