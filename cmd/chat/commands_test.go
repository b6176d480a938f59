package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katutubo-llm/pkg/llm"
)

func fakeAPI(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llm.HealthResponse{Ready: true})
	})
	mux.HandleFunc("/infer", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llm.InferResponse{Response: answer})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llm.RootResponse{Message: "Welcome to the Katutubo LLM Inference API!"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPingCmd(t *testing.T) {
	t.Setenv("URL", fakeAPI(t, "").URL)
	out, err := execute(t, "ping")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the Katutubo LLM Inference API!\n", out)
}

func TestAskCmd(t *testing.T) {
	t.Setenv("URL", fakeAPI(t, "Lagnat at rashes.").URL)
	out, err := execute(t, "ask", "Anong", "symptoms", "ng", "dengue?")
	require.NoError(t, err)
	assert.Equal(t, "Lagnat at rashes.\n", out)
}

func TestAskCmd_Fallback(t *testing.T) {
	t.Setenv("URL", fakeAPI(t, "").URL)
	out, err := execute(t, "ask", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Walang sagot 😅\n", out)
}

func TestAskCmd_RequiresPrompt(t *testing.T) {
	_, err := execute(t, "ask")
	assert.Error(t, err)
}
