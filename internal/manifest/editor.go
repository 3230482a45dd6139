package manifest

// Entry describes one (section, key, value) update for the Editor.
type Entry struct {
	Section string
	Key     string
	Value   string
}

// Editor applies entry updates to manifest documents.
type Editor struct{}

// NewEditor constructs an Editor instance.
func NewEditor() *Editor {
	return &Editor{}
}

// Apply ensures every entry exists in its named section with the given value.
//
// Sections are created when absent and prior values overwritten, so applying
// the same entries twice yields the same manifest.
func (editor *Editor) Apply(document Document, entries []Entry) Document {
	for _, entry := range entries {
		document.SetEntry(entry.Section, entry.Key, entry.Value)
	}

	return document
}
