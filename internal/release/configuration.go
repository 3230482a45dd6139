package release

import (
	"strings"

	"github.com/relbind/relbind/internal/manifest"
	"github.com/relbind/relbind/internal/patch"
)

const (
	defaultLanguageNameConstant        = "julia"
	defaultPackageNameConstant         = "mlpack"
	defaultBindingExtensionConstant    = ".jl"
	defaultManifestFileNameConstant    = "Project.toml"
	defaultTestBindingFileNameConstant = "test_binding.jl"
)

// RuleConfiguration mirrors one patch rule in configuration form.
type RuleConfiguration struct {
	Kind        string `mapstructure:"kind"`
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
	FileName    string `mapstructure:"file"`
}

// ManifestEntryConfiguration mirrors one manifest entry in configuration form.
type ManifestEntryConfiguration struct {
	Section string `mapstructure:"section"`
	Key     string `mapstructure:"key"`
	Value   string `mapstructure:"value"`
}

// CommandConfiguration captures configuration values for the release command.
type CommandConfiguration struct {
	BuildRoot       string                       `mapstructure:"build_root"`
	TargetRoot      string                       `mapstructure:"target_root"`
	Language        string                       `mapstructure:"language"`
	PackageName     string                       `mapstructure:"package_name"`
	PackageVersion  string                       `mapstructure:"package_version"`
	FileExtension   string                       `mapstructure:"file_extension"`
	ManifestFile    string                       `mapstructure:"manifest_file"`
	RulesFilePath   string                       `mapstructure:"rules_file"`
	Rules           []RuleConfiguration          `mapstructure:"rules"`
	ManifestEntries []ManifestEntryConfiguration `mapstructure:"manifest_entries"`
	RegistryBaseURL string                       `mapstructure:"registry_base_url"`
	Strict          bool                         `mapstructure:"strict"`
	Submit          bool                         `mapstructure:"submit"`
	DryRun          bool                         `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline configuration values for the release command.
//
// The default rule list drops the generated test binding, which has no home in
// the published package.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Language:      defaultLanguageNameConstant,
		PackageName:   defaultPackageNameConstant,
		FileExtension: defaultBindingExtensionConstant,
		ManifestFile:  defaultManifestFileNameConstant,
		Rules: []RuleConfiguration{
			{Kind: string(patch.RuleKindDelete), FileName: defaultTestBindingFileNameConstant},
		},
	}
}

// DefaultConfigurationValues exposes release defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".language":       defaults.Language,
		configurationKeyPrefix + ".package_name":   defaults.PackageName,
		configurationKeyPrefix + ".file_extension": defaults.FileExtension,
		configurationKeyPrefix + ".manifest_file":  defaults.ManifestFile,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.BuildRoot = strings.TrimSpace(configuration.BuildRoot)
	sanitized.TargetRoot = strings.TrimSpace(configuration.TargetRoot)
	sanitized.Language = strings.TrimSpace(configuration.Language)
	sanitized.PackageName = strings.TrimSpace(configuration.PackageName)
	sanitized.PackageVersion = strings.TrimSpace(configuration.PackageVersion)
	sanitized.FileExtension = strings.TrimSpace(configuration.FileExtension)
	sanitized.ManifestFile = strings.TrimSpace(configuration.ManifestFile)
	sanitized.RulesFilePath = strings.TrimSpace(configuration.RulesFilePath)
	sanitized.RegistryBaseURL = strings.TrimSpace(configuration.RegistryBaseURL)

	return sanitized
}

// patchRules converts configured rules into patch rules.
func (configuration CommandConfiguration) patchRules() []patch.Rule {
	rules := make([]patch.Rule, 0, len(configuration.Rules))
	for _, ruleConfiguration := range configuration.Rules {
		rules = append(rules, patch.Rule{
			Kind:        patch.RuleKind(strings.TrimSpace(ruleConfiguration.Kind)),
			Pattern:     ruleConfiguration.Pattern,
			Replacement: ruleConfiguration.Replacement,
			FileName:    strings.TrimSpace(ruleConfiguration.FileName),
		})
	}
	return rules
}

// manifestEntries converts configured entries into manifest entries.
func (configuration CommandConfiguration) manifestEntries() []manifest.Entry {
	entries := make([]manifest.Entry, 0, len(configuration.ManifestEntries))
	for _, entryConfiguration := range configuration.ManifestEntries {
		entries = append(entries, manifest.Entry{
			Section: strings.TrimSpace(entryConfiguration.Section),
			Key:     strings.TrimSpace(entryConfiguration.Key),
			Value:   entryConfiguration.Value,
		})
	}
	return entries
}
