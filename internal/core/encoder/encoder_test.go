package encoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", req.Model)
		assert.Equal(t, []string{"dengue"}, req.Input)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.5, -0.25}, "index": 0}},
		})
	}))
	defer server.Close()

	enc := NewOpenAI(server.URL+"/v1", "test-key", "paraphrase-multilingual-MiniLM-L12-v2", time.Second)
	vec, err := enc.Embed(context.Background(), "dengue")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25}, vec)
}

func TestOpenAI_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAI(server.URL, "", "m", time.Second).Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAI_EmptyText(t *testing.T) {
	_, err := NewOpenAI("http://localhost:1", "", "m", time.Second).Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestOllama_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	vec, err := NewOllama(server.URL, "nomic-embed-text", time.Second).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestOllama_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllama(server.URL, "m", time.Second).Embed(context.Background(), "hello")
	assert.Error(t, err)
}
