package apperror

import "katutubo-llm/pkg/apperror/status"

// IsConfiguration reports a missing or invalid configuration, fatal at startup.
func IsConfiguration(err error) bool { return status.InRange(err, status.ConfigurationBase) }

// IsRetrieval reports an embedding or vector store failure.
func IsRetrieval(err error) bool { return status.InRange(err, status.RetrievalBase) }

// IsInference reports a tokenizer or generation failure.
func IsInference(err error) bool { return status.InRange(err, status.InferenceBase) }

// IsServiceUnavailable reports that the service never became ready for a client.
func IsServiceUnavailable(err error) bool {
	return status.InRange(err, status.ServiceUnavailableBase)
}
