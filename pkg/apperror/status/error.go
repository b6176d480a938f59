package status

import "errors"

// ErrorCode is a numeric code to classify errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     request validation
//   1000-1999: configuration
//   2000-2999: retrieval (embedding, vector store)
//   3000-3999: inference (tokenizer, generation)
//   4000-4999: client (service availability)
const (
	BadRequestBase         ErrorCode = 0
	ConfigurationBase      ErrorCode = 1000
	RetrievalBase          ErrorCode = 2000
	InferenceBase          ErrorCode = 3000
	ServiceUnavailableBase ErrorCode = 4000
)

// Request validation errors
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
	NotReady                                             // 2
)

// Configuration errors, fatal at startup
const (
	ConfigurationMissing     ErrorCode = ConfigurationBase + iota // 1000
	ConfigurationInvalidFile                                      // 1001
	ConfigurationInvalidEnv                                       // 1002
	ConfigurationUnsupported                                      // 1003
)

// Retrieval errors
const (
	RetrievalEmbedFailed  ErrorCode = RetrievalBase + iota // 2000
	RetrievalSearchFailed                                  // 2001
	RetrievalStoreUnavailable                              // 2002
)

// Inference errors
const (
	InferenceTokenizeFailed ErrorCode = InferenceBase + iota // 3000
	InferenceGenerateFailed                                  // 3001
)

// Client errors
const (
	ServiceUnavailable ErrorCode = ServiceUnavailableBase + iota // 4000
)

// Errors that carry no code
const (
	ErrorCodeInternal ErrorCode = 9000
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}

// CodeOf returns the code of the first CodedError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.ErrorCode(), true
	}
	return 0, false
}

// InRange reports whether err carries a code in [base, base+1000).
func InRange(err error, base ErrorCode) bool {
	code, ok := CodeOf(err)
	return ok && code >= base && code < base+1000
}
