package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	debugLevelNameConstant           = "debug"
	infoLevelNameConstant            = "info"
	warnLevelNameConstant            = "warn"
	errorLevelNameConstant           = "error"
	structuredFormatNameConstant     = "structured"
	consoleFormatNameConstant        = "console"
	jsonEncodingNameConstant         = "json"
	consoleEncodingNameConstant      = "console"
	unknownLogLevelTemplateConstant  = "unsupported log level: %s"
	unknownLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel selects the minimum severity a logger emits.
type LogLevel string

// Log levels accepted by configuration and flags.
const (
	LogLevelDebug LogLevel = LogLevel(debugLevelNameConstant)
	LogLevelInfo  LogLevel = LogLevel(infoLevelNameConstant)
	LogLevelWarn  LogLevel = LogLevel(warnLevelNameConstant)
	LogLevelError LogLevel = LogLevel(errorLevelNameConstant)
)

// LogFormat selects how log records are encoded on the output stream.
type LogFormat string

// Log formats accepted by configuration and flags.
const (
	LogFormatStructured LogFormat = LogFormat(structuredFormatNameConstant)
	LogFormatConsole    LogFormat = LogFormat(consoleFormatNameConstant)
)

// LoggerFactory translates release tool logging settings into zap loggers.
type LoggerFactory struct{}

var zapLevelByLogLevel = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var zapEncodingByLogFormat = map[LogFormat]string{
	LogFormatStructured: jsonEncodingNameConstant,
	LogFormatConsole:    consoleEncodingNameConstant,
}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger builds a zap.Logger for the requested level and format, rejecting values outside the accepted sets.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, knownLevel := zapLevelByLogLevel[requestedLogLevel]
	if !knownLevel {
		return nil, fmt.Errorf(unknownLogLevelTemplateConstant, requestedLogLevel)
	}

	zapEncoding, knownFormat := zapEncodingByLogFormat[requestedLogFormat]
	if !knownFormat {
		return nil, fmt.Errorf(unknownLogFormatTemplateConstant, requestedLogFormat)
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	loggerConfiguration.Encoding = zapEncoding

	return loggerConfiguration.Build()
}
