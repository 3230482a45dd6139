package bindings

import (
	"errors"
	"io/fs"
	"path/filepath"
)

const (
	targetSourceDirectoryNameConstant    = "src"
	transplantedFilePermissionsConstant  = fs.FileMode(0o644)
	targetDirectoryPermissionsConstant   = fs.FileMode(0o755)
	readFileOperationNameConstant        = "read file"
	writeFileOperationNameConstant       = "write file"
	createDirectoryOperationNameConstant = "create directory"
)

// TransplantResult reports the paths written into the target repository.
type TransplantResult struct {
	WrittenBindingPaths []string
	ManifestPath        string
	ManifestCopied      bool
}

// Transplanter copies located binding files and the manifest template into a target repository.
type Transplanter struct {
	fileSystem FileSystem
}

// NewTransplanter constructs a Transplanter backed by the provided filesystem.
func NewTransplanter(fileSystem FileSystem) *Transplanter {
	return &Transplanter{fileSystem: fileSystem}
}

// Transplant copies binding files into the target source directory and the manifest template to the target root.
//
// Existing binding files of the same name are overwritten. An existing manifest
// at the target root is left untouched so hand-edited compatibility data
// survives repeated runs.
func (transplanter *Transplanter) Transplant(located LocatedBindings, targetRoot string, manifestFileName string) (TransplantResult, error) {
	targetSourceDirectory := filepath.Join(targetRoot, targetSourceDirectoryNameConstant)
	if mkdirError := transplanter.fileSystem.MkdirAll(targetSourceDirectory, targetDirectoryPermissionsConstant); mkdirError != nil {
		return TransplantResult{}, IOError{Operation: createDirectoryOperationNameConstant, Path: targetSourceDirectory, Cause: mkdirError}
	}

	writtenBindingPaths := make([]string, 0, len(located.BindingFilePaths))
	for _, bindingFilePath := range located.BindingFilePaths {
		bindingContent, readError := transplanter.fileSystem.ReadFile(bindingFilePath)
		if readError != nil {
			return TransplantResult{}, IOError{Operation: readFileOperationNameConstant, Path: bindingFilePath, Cause: readError}
		}

		targetPath := filepath.Join(targetSourceDirectory, filepath.Base(bindingFilePath))
		if writeError := transplanter.fileSystem.WriteFile(targetPath, bindingContent, transplantedFilePermissionsConstant); writeError != nil {
			return TransplantResult{}, IOError{Operation: writeFileOperationNameConstant, Path: targetPath, Cause: writeError}
		}
		writtenBindingPaths = append(writtenBindingPaths, targetPath)
	}

	targetManifestPath := filepath.Join(targetRoot, manifestFileName)
	manifestCopied := false
	if _, statError := transplanter.fileSystem.Stat(targetManifestPath); statError != nil {
		if !errors.Is(statError, fs.ErrNotExist) {
			return TransplantResult{}, IOError{Operation: readFileOperationNameConstant, Path: targetManifestPath, Cause: statError}
		}

		manifestContent, readError := transplanter.fileSystem.ReadFile(located.ManifestTemplatePath)
		if readError != nil {
			return TransplantResult{}, IOError{Operation: readFileOperationNameConstant, Path: located.ManifestTemplatePath, Cause: readError}
		}
		if writeError := transplanter.fileSystem.WriteFile(targetManifestPath, manifestContent, transplantedFilePermissionsConstant); writeError != nil {
			return TransplantResult{}, IOError{Operation: writeFileOperationNameConstant, Path: targetManifestPath, Cause: writeError}
		}
		manifestCopied = true
	}

	return TransplantResult{
		WrittenBindingPaths: writtenBindingPaths,
		ManifestPath:        targetManifestPath,
		ManifestCopied:      manifestCopied,
	}, nil
}
