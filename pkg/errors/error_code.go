package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown            ErrorCode = 1
	ErrCodeInvariantViolation ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidProfitLimit   ErrorCode = 102
	ErrCodeInvalidStopLoss      ErrorCode = 103
	ErrCodeInvalidSlippage      ErrorCode = 104
	ErrCodeInvalidRange         ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 106
	ErrCodeInvalidMultiplier    ErrorCode = 107
	ErrCodeInvalidDate          ErrorCode = 108
	ErrCodeInvalidVersion       ErrorCode = 109
	ErrCodeMissingParameter     ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeResultWriteFailed     ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Backtest errors (600-699)
	ErrCodeBacktestConfigError     ErrorCode = 600
	ErrCodeBacktestNoDatasource    ErrorCode = 601
	ErrCodeBacktestNoCombinations  ErrorCode = 602
	ErrCodeUnsupportedEntryMode    ErrorCode = 603
	ErrCodeCombinationFailed       ErrorCode = 604
	ErrCodeBacktestVersionMismatch ErrorCode = 605

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeInvalidTimespan       ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)
