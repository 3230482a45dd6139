// Package bindings models generated binding artifacts and the filesystem
// operations that move them from a build output tree into a target package
// repository.
//
// It provides the Locator, which discovers binding files and the manifest
// template under a build root, the Transplanter, which copies them into the
// target repository without clobbering an existing manifest, and the
// BindingSet collection the patch package mutates.
package bindings
