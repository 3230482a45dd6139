// Package publish stages release artifacts in the target repository and
// forwards update submissions to the package registry.
//
// Staging runs git add for the written files and never commits; the release
// commit remains a human decision. Registry submission only happens on
// explicit request.
package publish
