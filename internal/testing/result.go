package testing

// TxResult is the outcome of a submitted transaction in a test.
type TxResult struct {
	Code    string
	Success bool
	Applied bool
	Message string
	Hash    string
}
