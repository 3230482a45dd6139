package release

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/relbind/relbind/internal/bindings"
	"github.com/relbind/relbind/internal/manifest"
	"github.com/relbind/relbind/internal/patch"
	"github.com/relbind/relbind/internal/registry"
)

const (
	fileSystemNotConfiguredMessageConstant      = "file system not configured"
	directoryReaderNotConfiguredMessageConstant = "directory reader not configured"
	publisherNotConfiguredMessageConstant       = "publisher not configured"
	serviceLoggerNotConfiguredMessageConstant   = "release logger not configured"
	buildRootRequiredMessageConstant            = "build root must be provided"
	targetRootRequiredMessageConstant           = "target root must be provided"
	packageVersionRequiredMessageConstant       = "package version must be provided when submitting"
	stageFailedErrorTemplateConstant            = "release stage %s failed: %w"
	patchedFilePermissionsConstant              = fs.FileMode(0o644)
	manifestFilePermissionsConstant             = fs.FileMode(0o644)
	versionManifestKeyConstant                  = "version"
	bindingsLocatedLogMessageConstant           = "bindings located"
	dryRunPlanLogMessageConstant                = "dry run: skipping transplant and later stages"
	bindingsTransplantedLogMessageConstant      = "bindings transplanted"
	bindingsPatchedLogMessageConstant           = "bindings patched"
	manifestUpdatedLogMessageConstant           = "manifest updated"
	logFieldBindingDirectoryConstant            = "binding_directory"
	logFieldBindingCountConstant                = "binding_count"
	logFieldTargetRootConstant                  = "target_root"
	logFieldRemovedCountConstant                = "removed_count"
	logFieldManifestPathConstant                = "manifest_path"
)

// Publisher stages release files and submits registry updates.
type Publisher interface {
	StageChanges(executionContext context.Context, targetRepositoryPath string, stagedFilePaths []string) error
	Submit(executionContext context.Context, updateRequest registry.UpdateRequest) (registry.UpdateTicket, error)
}

// Options describe one release run.
type Options struct {
	BuildRoot       string
	TargetRoot      string
	Language        string
	PackageName     string
	PackageVersion  string
	FileExtension   string
	ManifestFile    string
	Rules           []patch.Rule
	ManifestEntries []manifest.Entry
	Strict          bool
	Submit          bool
	DryRun          bool
}

// Sentinel errors for service construction.
var (
	// ErrFileSystemNotConfigured indicates the service was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrDirectoryReaderNotConfigured indicates the service was constructed without a directory reader.
	ErrDirectoryReaderNotConfigured = errors.New(directoryReaderNotConfiguredMessageConstant)
	// ErrPublisherNotConfigured indicates the service was constructed without a publisher.
	ErrPublisherNotConfigured = errors.New(publisherNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(serviceLoggerNotConfiguredMessageConstant)
)

// Service executes the release pipeline stage by stage.
type Service struct {
	fileSystem      bindings.FileSystem
	directoryReader bindings.DirectoryReader
	publisher       Publisher
	logger          *zap.Logger
}

// NewService constructs a release Service from the provided collaborators.
func NewService(fileSystem bindings.FileSystem, directoryReader bindings.DirectoryReader, publisher Publisher, logger *zap.Logger) (*Service, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if directoryReader == nil {
		return nil, ErrDirectoryReaderNotConfigured
	}
	if publisher == nil {
		return nil, ErrPublisherNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	return &Service{fileSystem: fileSystem, directoryReader: directoryReader, publisher: publisher, logger: logger}, nil
}

// Execute runs the pipeline and returns the session alongside any stage failure.
//
// The returned session always reflects the stages that completed; a failed
// stage stops the run and already-written files are left in place.
func (service *Service) Execute(executionContext context.Context, options Options) (Session, error) {
	session := Session{}

	if validationError := validateOptions(options); validationError != nil {
		return session, validationError
	}
	if rulesError := patch.ValidateRules(options.Rules); rulesError != nil {
		return session, rulesError
	}

	locator := bindings.NewLocator(service.fileSystem, service.directoryReader)
	located, locateError := locator.Locate(bindings.LocatorOptions{
		BuildRoot:        options.BuildRoot,
		Language:         options.Language,
		PackageName:      options.PackageName,
		FileExtension:    options.FileExtension,
		ManifestFileName: options.ManifestFile,
	})
	if locateError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StageLocated, locateError)
	}
	session.Advance(StageLocated)
	service.logger.Info(
		bindingsLocatedLogMessageConstant,
		zap.String(logFieldBindingDirectoryConstant, located.BindingDirectory),
		zap.Int(logFieldBindingCountConstant, len(located.BindingFilePaths)),
	)

	if options.DryRun {
		service.logger.Info(
			dryRunPlanLogMessageConstant,
			zap.String(logFieldTargetRootConstant, options.TargetRoot),
			zap.Int(logFieldBindingCountConstant, len(located.BindingFilePaths)),
		)
		return session, nil
	}

	transplanter := bindings.NewTransplanter(service.fileSystem)
	transplantResult, transplantError := transplanter.Transplant(located, options.TargetRoot, options.ManifestFile)
	if transplantError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StageTransplanted, transplantError)
	}
	session.Advance(StageTransplanted)
	service.logger.Info(
		bindingsTransplantedLogMessageConstant,
		zap.String(logFieldTargetRootConstant, options.TargetRoot),
		zap.Int(logFieldBindingCountConstant, len(transplantResult.WrittenBindingPaths)),
	)

	patchedPaths, patchError := service.patchTransplantedFiles(transplantResult.WrittenBindingPaths, options)
	if patchError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StagePatched, patchError)
	}
	session.Advance(StagePatched)
	session.WrittenFilePaths = patchedPaths
	service.logger.Info(
		bindingsPatchedLogMessageConstant,
		zap.Int(logFieldBindingCountConstant, len(patchedPaths)),
		zap.Int(logFieldRemovedCountConstant, len(transplantResult.WrittenBindingPaths)-len(patchedPaths)),
	)

	if manifestError := service.updateManifest(transplantResult.ManifestPath, options); manifestError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StageManifestUpdated, manifestError)
	}
	session.Advance(StageManifestUpdated)
	session.ManifestPath = transplantResult.ManifestPath
	service.logger.Info(manifestUpdatedLogMessageConstant, zap.String(logFieldManifestPathConstant, transplantResult.ManifestPath))

	stagedFilePaths := append(append([]string{}, patchedPaths...), transplantResult.ManifestPath)
	if stagingError := service.publisher.StageChanges(executionContext, options.TargetRoot, stagedFilePaths); stagingError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StageStagedForCommit, stagingError)
	}
	session.Advance(StageStagedForCommit)

	if !options.Submit {
		return session, nil
	}

	updateTicket, submissionError := service.publisher.Submit(executionContext, registry.UpdateRequest{
		PackageName:    options.PackageName,
		PackageVersion: options.PackageVersion,
	})
	if submissionError != nil {
		return session, fmt.Errorf(stageFailedErrorTemplateConstant, StagePublished, submissionError)
	}
	session.Advance(StagePublished)
	session.TrackingID = updateTicket.Identifier

	return session, nil
}

// patchTransplantedFiles applies the rule list to the written binding files and
// returns the paths that remain after deletions.
func (service *Service) patchTransplantedFiles(writtenBindingPaths []string, options Options) ([]string, error) {
	bindingFiles := make([]bindings.BindingFile, 0, len(writtenBindingPaths))
	directoryByName := map[string]string{}
	for _, writtenBindingPath := range writtenBindingPaths {
		bindingContent, readError := service.fileSystem.ReadFile(writtenBindingPath)
		if readError != nil {
			return nil, readError
		}

		bindingName := filepath.Base(writtenBindingPath)
		directoryByName[bindingName] = filepath.Dir(writtenBindingPath)
		bindingFiles = append(bindingFiles, bindings.BindingFile{RelativePath: bindingName, Content: string(bindingContent)})
	}

	bindingSet := bindings.NewBindingSet(bindingFiles)
	patcher := patch.NewPatcher(options.Strict)
	if _, applyError := patcher.Apply(bindingSet, options.Rules); applyError != nil {
		return nil, applyError
	}

	retainedNames := map[string]bool{}
	patchedPaths := make([]string, 0, bindingSet.Len())
	for _, bindingFile := range bindingSet.Files() {
		retainedNames[bindingFile.RelativePath] = true
		patchedPath := filepath.Join(directoryByName[bindingFile.RelativePath], bindingFile.RelativePath)
		if writeError := service.fileSystem.WriteFile(patchedPath, []byte(bindingFile.Content), patchedFilePermissionsConstant); writeError != nil {
			return nil, writeError
		}
		patchedPaths = append(patchedPaths, patchedPath)
	}

	for _, writtenBindingPath := range writtenBindingPaths {
		if retainedNames[filepath.Base(writtenBindingPath)] {
			continue
		}
		if removeError := service.fileSystem.Remove(writtenBindingPath); removeError != nil {
			return nil, removeError
		}
	}

	return patchedPaths, nil
}

// updateManifest applies configured entries and stamps the package version.
func (service *Service) updateManifest(manifestPath string, options Options) error {
	manifestContent, readError := service.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		return readError
	}

	document, parseError := manifest.ParseDocument(manifestContent)
	if parseError != nil {
		return parseError
	}

	editor := manifest.NewEditor()
	document = editor.Apply(document, options.ManifestEntries)
	if len(options.PackageVersion) > 0 {
		document.SetValue(versionManifestKeyConstant, options.PackageVersion)
	}

	encodedContent, encodeError := document.Encode()
	if encodeError != nil {
		return encodeError
	}

	return service.fileSystem.WriteFile(manifestPath, encodedContent, manifestFilePermissionsConstant)
}

func validateOptions(options Options) error {
	if len(options.BuildRoot) == 0 {
		return errors.New(buildRootRequiredMessageConstant)
	}
	if len(options.TargetRoot) == 0 {
		return errors.New(targetRootRequiredMessageConstant)
	}
	if options.Submit && len(options.PackageVersion) == 0 {
		return errors.New(packageVersionRequiredMessageConstant)
	}

	return nil
}
