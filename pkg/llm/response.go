package llm

// InferResponse is the body returned by POST /infer on success.
type InferResponse struct {
	Response string `json:"response"`
}

// RootResponse is the liveness banner of GET /.
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Ready bool `json:"ready"`
}
