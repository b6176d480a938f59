package llm

// InferRequest is the body of POST /infer.
type InferRequest struct {
	Prompt  string  `json:"prompt"`
	History History `json:"history"`
}
