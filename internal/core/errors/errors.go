package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpValidationError        = "validation_failed"
	HttpNotFoundError          = "batch_not_found"
	HttpDuplicateError         = "duplicate_record"
	HttpLedgerUnavailableError = "ledger_unavailable"
	HttpPersistenceError       = "persistence_failed"
	HttpGenesisIncompleteError = "genesis_incomplete"
)

// ErrorResponse is the error response body for provenance API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
