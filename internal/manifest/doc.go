// Package manifest reads, edits, and re-encodes package manifests.
//
// A manifest is a TOML document with top-level metadata plus named sections
// such as [deps] and [compat] holding key = "value" pairs. The Editor applies
// (section, key, value) triples idempotently; encoding sorts keys so repeated
// runs produce byte-identical output.
package manifest
