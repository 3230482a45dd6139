package manifest

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	documentParseErrorTemplateConstant  = "failed to parse manifest: %w"
	documentEncodeErrorTemplateConstant = "failed to encode manifest: %w"
)

// Document represents a parsed manifest with named sections of key-value pairs.
type Document struct {
	values map[string]any
}

// ParseDocument decodes manifest content into a Document.
func ParseDocument(content []byte) (Document, error) {
	values := map[string]any{}
	if unmarshalError := toml.Unmarshal(content, &values); unmarshalError != nil {
		return Document{}, fmt.Errorf(documentParseErrorTemplateConstant, unmarshalError)
	}

	return Document{values: values}, nil
}

// NewDocument constructs an empty manifest document.
func NewDocument() Document {
	return Document{values: map[string]any{}}
}

// Section returns a copy of the named section's string entries.
func (document Document) Section(sectionName string) map[string]string {
	sectionEntries := map[string]string{}

	sectionValue, sectionPresent := document.values[sectionName]
	if !sectionPresent {
		return sectionEntries
	}

	sectionMap, isMap := sectionValue.(map[string]any)
	if !isMap {
		return sectionEntries
	}

	for entryKey, entryValue := range sectionMap {
		if stringValue, isString := entryValue.(string); isString {
			sectionEntries[entryKey] = stringValue
		}
	}

	return sectionEntries
}

// Value returns the top-level string stored under the provided key.
func (document Document) Value(entryKey string) (string, bool) {
	entryValue, entryPresent := document.values[entryKey]
	if !entryPresent {
		return "", false
	}

	stringValue, isString := entryValue.(string)
	return stringValue, isString
}

// SetValue stores a top-level string under the provided key.
func (document Document) SetValue(entryKey string, entryValue string) {
	document.values[entryKey] = entryValue
}

// SetEntry stores a value under the named section, creating the section when absent.
func (document Document) SetEntry(sectionName string, entryKey string, entryValue string) {
	sectionValue, sectionPresent := document.values[sectionName]
	if sectionPresent {
		if sectionMap, isMap := sectionValue.(map[string]any); isMap {
			sectionMap[entryKey] = entryValue
			return
		}
	}

	document.values[sectionName] = map[string]any{entryKey: entryValue}
}

// Encode serializes the document; map keys encode sorted, so output is deterministic.
func (document Document) Encode() ([]byte, error) {
	encodedContent, marshalError := toml.Marshal(document.values)
	if marshalError != nil {
		return nil, fmt.Errorf(documentEncodeErrorTemplateConstant, marshalError)
	}

	return encodedContent, nil
}
