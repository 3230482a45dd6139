package release

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relbind/relbind/internal/bindings"
	"github.com/relbind/relbind/internal/execshell"
	"github.com/relbind/relbind/internal/patch"
	"github.com/relbind/relbind/internal/publish"
	"github.com/relbind/relbind/internal/registry"
)

const (
	commandUseConstant                    = "release"
	commandShortDescriptionConstant       = "Package generated bindings into the target repository"
	commandLongDescriptionConstant        = "release locates generated binding files beneath a build root, transplants them into the target package repository, patches them with the configured rules, updates the package manifest, and stages the result with git. With --submit the new version is also sent to the package registry."
	commandExecutionErrorTemplateConstant = "release failed: %w"
	flagBuildNameConstant                 = "build"
	flagBuildDescriptionConstant          = "Path to the build output root containing generated bindings"
	flagTargetNameConstant                = "target"
	flagTargetDescriptionConstant         = "Path to the target package repository"
	flagRulesNameConstant                 = "rules"
	flagRulesDescriptionConstant          = "Path to a YAML patch rule file overriding configured rules"
	flagStrictNameConstant                = "strict"
	flagStrictDescriptionConstant         = "Fail when a patch rule matches nothing"
	flagSubmitNameConstant                = "submit"
	flagSubmitDescriptionConstant         = "Submit the new version to the package registry after staging"
	flagPackageNameConstant               = "package"
	flagPackageDescriptionConstant        = "Package name to release"
	flagVersionNameConstant               = "version"
	flagVersionDescriptionConstant        = "Package version to stamp into the manifest and submit"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Report located bindings without writing to the target repository"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the release Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            bindings.FileSystem
	DirectoryReader       bindings.DirectoryReader
	GitExecutor           publish.GitExecutor
	RegistrySubmitter     publish.RegistrySubmitter
	HTTPClient            registry.HTTPClient
}

// Build constructs the release command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	command.Flags().String(flagBuildNameConstant, "", flagBuildDescriptionConstant)
	command.Flags().String(flagTargetNameConstant, "", flagTargetDescriptionConstant)
	command.Flags().String(flagRulesNameConstant, "", flagRulesDescriptionConstant)
	command.Flags().Bool(flagStrictNameConstant, false, flagStrictDescriptionConstant)
	command.Flags().Bool(flagSubmitNameConstant, false, flagSubmitDescriptionConstant)
	command.Flags().String(flagPackageNameConstant, "", flagPackageDescriptionConstant)
	command.Flags().String(flagVersionNameConstant, "", flagVersionDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration)

	rules, rulesError := builder.resolveRules(configuration)
	if rulesError != nil {
		return rulesError
	}

	logger := builder.resolveLogger()

	publisher, publisherError := builder.resolvePublisher(logger, configuration.RegistryBaseURL)
	if publisherError != nil {
		return publisherError
	}

	fileSystem, directoryReader := builder.resolveFileSystem()
	service, serviceError := NewService(fileSystem, directoryReader, publisher, logger)
	if serviceError != nil {
		return serviceError
	}

	options := Options{
		BuildRoot:       configuration.BuildRoot,
		TargetRoot:      configuration.TargetRoot,
		Language:        configuration.Language,
		PackageName:     configuration.PackageName,
		PackageVersion:  configuration.PackageVersion,
		FileExtension:   configuration.FileExtension,
		ManifestFile:    configuration.ManifestFile,
		Rules:           rules,
		ManifestEntries: configuration.manifestEntries(),
		Strict:          configuration.Strict,
		Submit:          configuration.Submit,
		DryRun:          configuration.DryRun,
	}

	if _, executionError := service.Execute(command.Context(), options); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}

	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveRules(configuration CommandConfiguration) ([]patch.Rule, error) {
	if len(configuration.RulesFilePath) > 0 {
		return patch.LoadRules(configuration.RulesFilePath)
	}

	rules := configuration.patchRules()
	if len(rules) == 0 {
		rules = DefaultCommandConfiguration().patchRules()
	}
	if validationError := patch.ValidateRules(rules); validationError != nil {
		return nil, validationError
	}

	return rules, nil
}

func (builder *CommandBuilder) resolveFileSystem() (bindings.FileSystem, bindings.DirectoryReader) {
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = bindings.OSFileSystem{}
	}

	directoryReader := builder.DirectoryReader
	if directoryReader == nil {
		directoryReader = bindings.OSFileSystem{}
	}

	return fileSystem, directoryReader
}

func (builder *CommandBuilder) resolvePublisher(logger *zap.Logger, registryBaseURL string) (Publisher, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	registrySubmitter := builder.RegistrySubmitter
	if registrySubmitter == nil {
		httpClient := builder.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{}
		}
		registryClient, clientError := registry.NewClient(httpClient, registryBaseURL, logger)
		if clientError != nil {
			return nil, clientError
		}
		registrySubmitter = registryClient
	}

	return publish.NewService(gitExecutor, registrySubmitter, logger)
}

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if command.Flags().Changed(flagBuildNameConstant) {
		buildValue, _ := command.Flags().GetString(flagBuildNameConstant)
		configuration.BuildRoot = strings.TrimSpace(buildValue)
	}
	if command.Flags().Changed(flagTargetNameConstant) {
		targetValue, _ := command.Flags().GetString(flagTargetNameConstant)
		configuration.TargetRoot = strings.TrimSpace(targetValue)
	}
	if command.Flags().Changed(flagRulesNameConstant) {
		rulesValue, _ := command.Flags().GetString(flagRulesNameConstant)
		configuration.RulesFilePath = strings.TrimSpace(rulesValue)
	}
	if command.Flags().Changed(flagStrictNameConstant) {
		strictValue, _ := command.Flags().GetBool(flagStrictNameConstant)
		configuration.Strict = strictValue
	}
	if command.Flags().Changed(flagSubmitNameConstant) {
		submitValue, _ := command.Flags().GetBool(flagSubmitNameConstant)
		configuration.Submit = submitValue
	}
	if command.Flags().Changed(flagPackageNameConstant) {
		packageValue, _ := command.Flags().GetString(flagPackageNameConstant)
		configuration.PackageName = strings.TrimSpace(packageValue)
	}
	if command.Flags().Changed(flagVersionNameConstant) {
		versionValue, _ := command.Flags().GetString(flagVersionNameConstant)
		configuration.PackageVersion = strings.TrimSpace(versionValue)
	}
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRunValue, _ := command.Flags().GetBool(flagDryRunNameConstant)
		configuration.DryRun = dryRunValue
	}

	return configuration
}
