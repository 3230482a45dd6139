package bindings

import "sort"

// BindingFile is a named text artifact produced by an external binding build.
type BindingFile struct {
	RelativePath string
	Content      string
}

// BindingSet holds an ordered collection of binding files keyed by relative path.
type BindingSet struct {
	files []BindingFile
}

// NewBindingSet constructs a BindingSet from the provided files, sorted by relative path.
func NewBindingSet(files []BindingFile) *BindingSet {
	duplicatedFiles := append([]BindingFile{}, files...)
	sort.Slice(duplicatedFiles, func(firstIndex int, secondIndex int) bool {
		return duplicatedFiles[firstIndex].RelativePath < duplicatedFiles[secondIndex].RelativePath
	})
	return &BindingSet{files: duplicatedFiles}
}

// Files returns the binding files in deterministic order.
func (set *BindingSet) Files() []BindingFile {
	return append([]BindingFile{}, set.files...)
}

// Lookup returns the binding file with the provided relative path when present.
func (set *BindingSet) Lookup(relativePath string) (BindingFile, bool) {
	for _, bindingFile := range set.files {
		if bindingFile.RelativePath == relativePath {
			return bindingFile, true
		}
	}
	return BindingFile{}, false
}

// Replace stores updated content for the binding file with the provided relative path.
func (set *BindingSet) Replace(relativePath string, content string) bool {
	for fileIndex := range set.files {
		if set.files[fileIndex].RelativePath == relativePath {
			set.files[fileIndex].Content = content
			return true
		}
	}
	return false
}

// Remove drops the binding file with the provided relative path and reports whether it existed.
func (set *BindingSet) Remove(relativePath string) bool {
	for fileIndex := range set.files {
		if set.files[fileIndex].RelativePath == relativePath {
			set.files = append(set.files[:fileIndex], set.files[fileIndex+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of binding files in the set.
func (set *BindingSet) Len() int {
	return len(set.files)
}
