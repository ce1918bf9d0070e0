package dto

// ReportOutcomeRequest records the result of one external processor call.
type ReportOutcomeRequest struct {
	ErrorCode string `json:"errorCode"`
}

// RetryAdviceResponse answers whether and when a caller should retry a
// failed processor call.
type RetryAdviceResponse struct {
	Processor    string  `json:"processor"`
	Attempt      int     `json:"attempt"`
	ShouldRetry  bool    `json:"shouldRetry"`
	DelaySeconds float64 `json:"delaySeconds"`
	Terminal     bool    `json:"terminal"`
	Retryable    bool    `json:"retryable"`
	CircuitOpen  bool    `json:"circuitOpen"`
}
