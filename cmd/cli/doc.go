// Package cli wires the relbind command hierarchy, configuration loading, and
// structured logging.
package cli
