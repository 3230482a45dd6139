// Package patch applies deterministic text transformations to transplanted
// binding files.
//
// Rules come in two kinds: rewrite rules substitute a substring within
// matching lines, and delete rules remove a binding file together with every
// line elsewhere that references it. Rule sets load from YAML files or from
// embedded configuration defaults, are validated for idempotence, and apply
// in order exactly once per run.
package patch
