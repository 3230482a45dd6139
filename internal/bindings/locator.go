package bindings

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const (
	buildSourceDirectoryNameConstant   = "src"
	buildVendorDirectoryNameConstant   = "mlpack"
	buildBindingsDirectoryNameConstant = "bindings"
	bindingSourceDirectoryNameConstant = "src"
	readDirectoryOperationNameConstant = "read directory"
	statOperationNameConstant          = "stat"
)

// LocatorOptions configure binding discovery beneath a build output root.
type LocatorOptions struct {
	BuildRoot        string
	Language         string
	PackageName      string
	FileExtension    string
	ManifestFileName string
}

// LocatedBindings captures the discovered binding artifacts.
type LocatedBindings struct {
	BindingDirectory     string
	BindingFilePaths     []string
	ManifestTemplatePath string
}

// DirectoryReader lists directory entries for the Locator.
type DirectoryReader interface {
	ReadDir(path string) ([]fs.DirEntry, error)
}

// Locator discovers generated binding files and the manifest template.
type Locator struct {
	fileSystem      FileSystem
	directoryReader DirectoryReader
}

// NewLocator constructs a Locator backed by the provided filesystem collaborators.
func NewLocator(fileSystem FileSystem, directoryReader DirectoryReader) *Locator {
	return &Locator{fileSystem: fileSystem, directoryReader: directoryReader}
}

// Locate resolves binding file paths and the manifest template beneath the build root.
func (locator *Locator) Locate(options LocatorOptions) (LocatedBindings, error) {
	packageDirectory := filepath.Join(options.BuildRoot, buildSourceDirectoryNameConstant, buildVendorDirectoryNameConstant, buildBindingsDirectoryNameConstant, options.Language, options.PackageName)
	bindingDirectory := filepath.Join(packageDirectory, bindingSourceDirectoryNameConstant)

	if _, statError := locator.fileSystem.Stat(bindingDirectory); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return LocatedBindings{}, NotFoundError{Path: bindingDirectory}
		}
		return LocatedBindings{}, IOError{Operation: statOperationNameConstant, Path: bindingDirectory, Cause: statError}
	}

	directoryEntries, readError := locator.directoryReader.ReadDir(bindingDirectory)
	if readError != nil {
		return LocatedBindings{}, IOError{Operation: readDirectoryOperationNameConstant, Path: bindingDirectory, Cause: readError}
	}

	bindingFilePaths := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		if !strings.HasSuffix(directoryEntry.Name(), options.FileExtension) {
			continue
		}
		bindingFilePaths = append(bindingFilePaths, filepath.Join(bindingDirectory, directoryEntry.Name()))
	}
	sort.Strings(bindingFilePaths)

	manifestTemplatePath := filepath.Join(packageDirectory, options.ManifestFileName)
	if _, statError := locator.fileSystem.Stat(manifestTemplatePath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return LocatedBindings{}, NotFoundError{Path: manifestTemplatePath}
		}
		return LocatedBindings{}, IOError{Operation: statOperationNameConstant, Path: manifestTemplatePath, Cause: statError}
	}

	return LocatedBindings{
		BindingDirectory:     bindingDirectory,
		BindingFilePaths:     bindingFilePaths,
		ManifestTemplatePath: manifestTemplatePath,
	}, nil
}
