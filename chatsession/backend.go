package chatsession

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// newBackendClient builds an OpenAI-compatible API client bound to one
// server's base URL and credential.
func newBackendClient(apiKey, baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

// backendError wraps an error from the backend client, extracting the HTTP
// status when the underlying library exposes one.
func backendError(server string, err error) error {
	status := 0
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}
	return &BackendRequestFailedError{
		ClientError: ClientError{Message: "backend request failed", Cause: err},
		Server:      server,
		StatusCode:  status,
	}
}
