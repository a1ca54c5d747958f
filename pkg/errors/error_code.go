package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidInitialCash   ErrorCode = 101
	ErrCodeInvalidFillPolicy    ErrorCode = 102
	ErrCodeInvalidSizingPolicy  ErrorCode = 103
	ErrCodeInvalidCostModel     ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106

	// Data integrity errors (200-299)
	ErrCodeEmptySeries        ErrorCode = 200
	ErrCodeNonMonotonicSeries ErrorCode = 201
	ErrCodeMissingIndicator   ErrorCode = 202
	ErrCodeInvalidBar         ErrorCode = 203
	ErrCodeDataParseFailed    ErrorCode = 204
	ErrCodeInsufficientData   ErrorCode = 205

	// Strategy errors (300-399)
	ErrCodeStrategyNotFound     ErrorCode = 300
	ErrCodeStrategyConfigError  ErrorCode = 301
	ErrCodeStrategyDecideFailed ErrorCode = 302
	ErrCodeInvalidAction        ErrorCode = 303

	// Simulation errors (400-499)
	ErrCodeSimulationFailed  ErrorCode = 400
	ErrCodeNegativeCash      ErrorCode = 401
	ErrCodeNegativePosition  ErrorCode = 402
	ErrCodeRunAlreadyStarted ErrorCode = 403

	// Analyzer errors (500-599)
	ErrCodeEmptyEquityCurve ErrorCode = 500

	// Results errors (600-699)
	ErrCodeResultsWriteFailed ErrorCode = 600
	ErrCodeResultsQueryFailed ErrorCode = 601
)
