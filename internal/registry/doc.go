// Package registry provides a typed client for the package registry's
// update-submission API.
//
// The registry is an opaque web collaborator: SubmitUpdate posts a package
// name and version and returns a tracking ticket, or a RegistryError when the
// service rejects the request. The HTTP client is injectable for testing.
package registry
