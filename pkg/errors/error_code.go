package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103
	ErrCodeInsufficientData     ErrorCode = 104

	// Series errors (200-299)
	ErrCodeInvalidSeries      ErrorCode = 200
	ErrCodeEmptySeries        ErrorCode = 201
	ErrCodeNonMonotonicSeries ErrorCode = 202
	ErrCodeInvalidBar         ErrorCode = 203
	ErrCodeIndexOutOfRange    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 400
	ErrCodeStrategyRuntimeError ErrorCode = 401

	// Execution errors (500-599)
	ErrCodeInvalidIntent ErrorCode = 500
	ErrCodeOrderFailed   ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestNoSeries    ErrorCode = 600
	ErrCodeBacktestNoStrategy  ErrorCode = 601
	ErrCodeBacktestConfigError ErrorCode = 602
	ErrCodeLedgerFailed        ErrorCode = 603

	// Data errors (700-799)
	ErrCodeDataLoadFailed  ErrorCode = 700
	ErrCodeDataParseFailed ErrorCode = 701
)
