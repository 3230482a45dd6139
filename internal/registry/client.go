package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultBaseURLConstant                 = "https://registry.juliahub.com"
	updatesEndpointPathConstant            = "/api/v1/updates"
	contentTypeHeaderNameConstant          = "Content-Type"
	contentTypeJSONValueConstant           = "application/json"
	httpClientNotConfiguredMessageConstant = "registry http client not configured"
	loggerNotConfiguredMessageConstant     = "registry logger not configured"
	packageNameRequiredMessageConstant     = "package name must be provided"
	packageVersionRequiredMessageConstant  = "package version must be provided"
	requestCreationErrorTemplateConstant   = "unable to create registry request: %w"
	requestExecutionErrorTemplateConstant  = "registry request failed: %w"
	responseDecodingErrorTemplateConstant  = "unable to decode registry response: %w"
	registryErrorTemplateConstant          = "registry rejected update for %s@%s (status %d): %s"
	submissionAcceptedLogMessageConstant   = "registry update submitted"
	logFieldPackageNameConstant            = "package_name"
	logFieldPackageVersionConstant         = "package_version"
	logFieldTrackingIdentifierConstant     = "tracking_id"
	registryResponseBodyReadLimitConstant  = int64(1 << 16)
)

// HTTPClient abstracts HTTP request execution for the registry client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// UpdateRequest describes a registry update submission.
type UpdateRequest struct {
	PackageName    string `json:"package"`
	PackageVersion string `json:"version"`
}

// UpdateTicket is the tracking handle returned for an accepted submission.
type UpdateTicket struct {
	Identifier string `json:"id"`
	URL        string `json:"url"`
}

// RegistryError reports a submission the registry rejected.
type RegistryError struct {
	PackageName    string
	PackageVersion string
	StatusCode     int
	Message        string
}

// Error describes the rejected submission.
func (registryError RegistryError) Error() string {
	return fmt.Sprintf(registryErrorTemplateConstant, registryError.PackageName, registryError.PackageVersion, registryError.StatusCode, registryError.Message)
}

// Sentinel errors for client construction.
var (
	// ErrHTTPClientNotConfigured indicates the client was constructed without an HTTP client.
	ErrHTTPClientNotConfigured = errors.New(httpClientNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the client was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
)

// Client submits update requests to the package registry service.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	logger     *zap.Logger
}

// NewClient constructs a registry client; an empty base URL selects the production registry.
func NewClient(httpClient HTTPClient, baseURL string, logger *zap.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(trimmedBaseURL) == 0 {
		trimmedBaseURL = defaultBaseURLConstant
	}

	return &Client{httpClient: httpClient, baseURL: trimmedBaseURL, logger: logger}, nil
}

// SubmitUpdate posts the update request and returns the registry's tracking ticket.
func (client *Client) SubmitUpdate(executionContext context.Context, updateRequest UpdateRequest) (UpdateTicket, error) {
	trimmedPackageName := strings.TrimSpace(updateRequest.PackageName)
	if len(trimmedPackageName) == 0 {
		return UpdateTicket{}, errors.New(packageNameRequiredMessageConstant)
	}

	trimmedPackageVersion := strings.TrimSpace(updateRequest.PackageVersion)
	if len(trimmedPackageVersion) == 0 {
		return UpdateTicket{}, errors.New(packageVersionRequiredMessageConstant)
	}

	requestPayload, marshalError := json.Marshal(UpdateRequest{PackageName: trimmedPackageName, PackageVersion: trimmedPackageVersion})
	if marshalError != nil {
		return UpdateTicket{}, fmt.Errorf(requestCreationErrorTemplateConstant, marshalError)
	}

	requestURL := client.baseURL + updatesEndpointPathConstant
	httpRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, requestURL, bytes.NewReader(requestPayload))
	if requestError != nil {
		return UpdateTicket{}, fmt.Errorf(requestCreationErrorTemplateConstant, requestError)
	}
	httpRequest.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONValueConstant)

	httpResponse, executionError := client.httpClient.Do(httpRequest)
	if executionError != nil {
		return UpdateTicket{}, fmt.Errorf(requestExecutionErrorTemplateConstant, executionError)
	}
	defer httpResponse.Body.Close()

	responseBody, readError := io.ReadAll(io.LimitReader(httpResponse.Body, registryResponseBodyReadLimitConstant))
	if readError != nil {
		return UpdateTicket{}, fmt.Errorf(responseDecodingErrorTemplateConstant, readError)
	}

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		return UpdateTicket{}, RegistryError{
			PackageName:    trimmedPackageName,
			PackageVersion: trimmedPackageVersion,
			StatusCode:     httpResponse.StatusCode,
			Message:        strings.TrimSpace(string(responseBody)),
		}
	}

	var updateTicket UpdateTicket
	if unmarshalError := json.Unmarshal(responseBody, &updateTicket); unmarshalError != nil {
		return UpdateTicket{}, fmt.Errorf(responseDecodingErrorTemplateConstant, unmarshalError)
	}

	client.logger.Info(
		submissionAcceptedLogMessageConstant,
		zap.String(logFieldPackageNameConstant, trimmedPackageName),
		zap.String(logFieldPackageVersionConstant, trimmedPackageVersion),
		zap.String(logFieldTrackingIdentifierConstant, updateTicket.Identifier),
	)

	return updateTicket, nil
}
