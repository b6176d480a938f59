// Package openaicompat builds openai-go clients for self-hosted OpenAI-compatible
// servers (vLLM, TGI, llama.cpp) as well as the hosted API.
package openaicompat

import (
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// New returns a client pointed at baseURL. Retries are disabled; every call is
// attempted once and failures surface to the caller.
func New(baseURL, apiKey string, timeout time.Duration) openai.Client {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return openai.NewClient(opts...)
}
