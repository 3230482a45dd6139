package bindings

import "fmt"

const (
	notFoundErrorTemplateConstant = "expected path not found: %s"
	ioErrorTemplateConstant       = "filesystem operation %s failed for %s: %s"
)

// NotFoundError reports a missing expected source file or directory.
type NotFoundError struct {
	Path string
}

// Error describes the missing path.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.Path)
}

// IOError reports a filesystem read or write failure.
type IOError struct {
	Operation string
	Path      string
	Cause     error
}

// Error describes the filesystem failure.
func (ioError IOError) Error() string {
	return fmt.Sprintf(ioErrorTemplateConstant, ioError.Operation, ioError.Path, ioError.Cause)
}

// Unwrap exposes the underlying cause.
func (ioError IOError) Unwrap() error {
	return ioError.Cause
}
