package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Ollama calls a local Ollama server's /api/generate endpoint in raw mode so
// the prompt reaches the model untemplated.
type Ollama struct {
	baseURL string
	model   string
	mainGPU *int
	client  *http.Client
}

// NewOllama pins generation to device when it names a GPU index ("0", "cuda:1").
func NewOllama(baseURL, model, device string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		mainGPU: gpuIndex(device),
		client:  &http.Client{Timeout: timeout},
	}
}

func gpuIndex(device string) *int {
	device = strings.TrimPrefix(strings.TrimSpace(device), "cuda:")
	if device == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.Split(device, ",")[0])
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

type ollamaOptions struct {
	Temperature   float64 `json:"temperature"`
	TopK          int     `json:"top_k"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	NumPredict    int     `json:"num_predict"`
	MainGPU       *int    `json:"main_gpu,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Raw     bool          `json:"raw"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (g *Ollama) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	opts := ollamaOptions{
		Temperature:   p.Temperature,
		TopK:          p.TopK,
		TopP:          p.TopP,
		RepeatPenalty: p.RepetitionPenalty,
		NumPredict:    p.MaxNewTokens,
		MainGPU:       g.mainGPU,
	}
	if !p.DoSample {
		opts.Temperature = 0
	}
	body, err := json.Marshal(ollamaGenerateRequest{Model: g.model, Prompt: prompt, Raw: true, Options: opts})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama returned status %d: decoding response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Response, nil
}
