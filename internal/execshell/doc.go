// Package execshell provides a typed shell executor for the external tools
// the release pipeline depends on.
//
// It wraps os/exec behind a CommandRunner interface, logs command lifecycle
// events through zap, and exposes ExecuteGit helpers plus typed errors so
// services can distinguish non-zero exits from execution failures.
package execshell
