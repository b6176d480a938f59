package inference

// Params are the decoding parameters sent with every generation.
type Params struct {
	DoSample          bool
	Temperature       float64
	TopK              int
	TopP              float64
	RepetitionPenalty float64
	MaxNewTokens      int
}

// DefaultParams are fixed for the Katutubo adapter; the service never changes them per request.
var DefaultParams = Params{
	DoSample:          true,
	Temperature:       0.7,
	TopK:              50,
	TopP:              0.9,
	RepetitionPenalty: 1.2,
	MaxNewTokens:      256,
}
