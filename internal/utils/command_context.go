package utils

import "context"

type commandContextKey string

const configurationPathContextKeyConstant = commandContextKey("configuration_file_path")

// CommandContextAccessor reads and writes release command values carried on a context.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath returns a child context carrying the configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationPathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path stored on the context, if any.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, pathPresent := executionContext.Value(configurationPathContextKeyConstant).(string)
	if !pathPresent || len(configurationFilePath) == 0 {
		return "", false
	}
	return configurationFilePath, true
}
