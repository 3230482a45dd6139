package bindings

import (
	"io/fs"
	"os"
)

// FileSystem exposes the filesystem operations required by the release pipeline.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
	Remove(path string) error
}

// OSFileSystem implements FileSystem using the os package.
type OSFileSystem struct{}

// Stat reports file information for the provided path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile loads the file content at the provided path.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile stores content at the provided path with the requested permissions.
func (OSFileSystem) WriteFile(path string, content []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, content, permissions)
}

// MkdirAll creates the directory hierarchy for the provided path.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// Remove deletes the file at the provided path.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// ReadDir lists the entries of the directory at the provided path.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}
