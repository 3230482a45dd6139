// Package release drives the binding release pipeline.
//
// A release run locates generated binding files beneath a build root,
// transplants them into the target package repository, patches them with the
// configured rule list, updates the package manifest, stages the result with
// git, and optionally submits the new version to the package registry. Stages
// run strictly in order and a failed stage stops the run without rollback.
package release
