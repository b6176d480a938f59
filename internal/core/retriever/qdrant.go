package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type QdrantConfig struct {
	URL         string
	APIKey      string
	Collection  string
	AnswerField string
	Timeout     time.Duration
}

// Qdrant is a minimal REST client for a read-only FAQ collection.
type Qdrant struct {
	url         string
	apiKey      string
	collection  string
	answerField string
	client      *http.Client
}

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	answerField := cfg.AnswerField
	if answerField == "" {
		answerField = "answer"
	}
	return &Qdrant{
		url:         strings.TrimRight(cfg.URL, "/"),
		apiKey:      cfg.APIKey,
		collection:  cfg.Collection,
		answerField: answerField,
		client:      &http.Client{Timeout: timeout},
	}
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (q *Qdrant) Nearest(ctx context.Context, vector []float32) (Hit, bool, error) {
	if len(vector) == 0 {
		return Hit{}, false, fmt.Errorf("empty query vector")
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        1,
		"with_payload": true,
	}
	var resp qdrantSearchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return Hit{}, false, err
	}
	if len(resp.Result) == 0 {
		return Hit{}, false, nil
	}
	r := resp.Result[0]
	return Hit{
		ID:     fmt.Sprint(r.ID),
		Score:  r.Score,
		Answer: payloadString(r.Payload, q.answerField),
	}, true, nil
}

// payloadString looks key up exactly, then case-insensitively. Collections
// built with other tooling often store "Answer".
func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	for k, v := range payload {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (q *Qdrant) Ping(ctx context.Context) error {
	return q.do(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", q.url, q.collection), nil, nil)
}

func (q *Qdrant) Close() error {
	q.client.CloseIdleConnections()
	return nil
}

func (q *Qdrant) do(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
