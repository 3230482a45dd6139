package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/relbind/relbind/internal/execshell"
	"github.com/relbind/relbind/internal/registry"
)

const (
	gitAddSubcommandConstant                   = "add"
	gitPathspecSeparatorConstant               = "--"
	gitExecutorNotConfiguredMessageConstant    = "git executor not configured"
	registryClientNotConfiguredMessageConstant = "registry submitter not configured"
	publishLoggerNotConfiguredMessageConstant  = "publish logger not configured"
	targetRepositoryRequiredMessageConstant    = "target repository path must be provided"
	stagedPathsRequiredMessageConstant         = "no paths provided for staging"
	stagingFailedErrorTemplateConstant         = "failed to stage %d file(s) in %s: %w"
	relativePathErrorTemplateConstant          = "unable to express %s relative to %s: %w"
	changesStagedLogMessageConstant            = "release files staged"
	logFieldTargetRepositoryConstant           = "target_repository"
	logFieldStagedFileCountConstant            = "staged_files"
)

// GitExecutor runs git commands for the publisher.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RegistrySubmitter submits update requests to the package registry.
type RegistrySubmitter interface {
	SubmitUpdate(executionContext context.Context, updateRequest registry.UpdateRequest) (registry.UpdateTicket, error)
}

// Sentinel errors for service construction.
var (
	// ErrGitExecutorNotConfigured indicates the service was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)
	// ErrRegistrySubmitterNotConfigured indicates the service was constructed without a registry submitter.
	ErrRegistrySubmitterNotConfigured = errors.New(registryClientNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(publishLoggerNotConfiguredMessageConstant)
)

// Service stages release files and coordinates registry submission.
type Service struct {
	gitExecutor       GitExecutor
	registrySubmitter RegistrySubmitter
	logger            *zap.Logger
}

// NewService constructs a publish Service from the provided collaborators.
func NewService(gitExecutor GitExecutor, registrySubmitter RegistrySubmitter, logger *zap.Logger) (*Service, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if registrySubmitter == nil {
		return nil, ErrRegistrySubmitterNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	return &Service{gitExecutor: gitExecutor, registrySubmitter: registrySubmitter, logger: logger}, nil
}

// StageChanges runs git add for the provided paths inside the target repository.
//
// Paths may be absolute or repository-relative; absolute paths are rewritten
// relative to the repository root before staging. The service never commits.
func (service *Service) StageChanges(executionContext context.Context, targetRepositoryPath string, stagedFilePaths []string) error {
	trimmedRepositoryPath := strings.TrimSpace(targetRepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return errors.New(targetRepositoryRequiredMessageConstant)
	}
	if len(stagedFilePaths) == 0 {
		return errors.New(stagedPathsRequiredMessageConstant)
	}

	relativeFilePaths := make([]string, 0, len(stagedFilePaths))
	for _, stagedFilePath := range stagedFilePaths {
		if !filepath.IsAbs(stagedFilePath) {
			relativeFilePaths = append(relativeFilePaths, stagedFilePath)
			continue
		}

		relativeFilePath, relativeError := filepath.Rel(trimmedRepositoryPath, stagedFilePath)
		if relativeError != nil {
			return fmt.Errorf(relativePathErrorTemplateConstant, stagedFilePath, trimmedRepositoryPath, relativeError)
		}
		relativeFilePaths = append(relativeFilePaths, relativeFilePath)
	}
	sort.Strings(relativeFilePaths)

	gitArguments := append([]string{gitAddSubcommandConstant, gitPathspecSeparatorConstant}, relativeFilePaths...)
	commandDetails := execshell.CommandDetails{
		Arguments:        gitArguments,
		WorkingDirectory: trimmedRepositoryPath,
	}

	if _, executionError := service.gitExecutor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return fmt.Errorf(stagingFailedErrorTemplateConstant, len(relativeFilePaths), trimmedRepositoryPath, executionError)
	}

	service.logger.Info(
		changesStagedLogMessageConstant,
		zap.String(logFieldTargetRepositoryConstant, trimmedRepositoryPath),
		zap.Int(logFieldStagedFileCountConstant, len(relativeFilePaths)),
	)

	return nil
}

// Submit forwards an update request to the package registry.
func (service *Service) Submit(executionContext context.Context, updateRequest registry.UpdateRequest) (registry.UpdateTicket, error) {
	return service.registrySubmitter.SubmitUpdate(executionContext, updateRequest)
}
