package rpc

// RpcError codes follow the JSON-RPC shape used by ledger daemons:
// a numeric code plus a short token and a human message.
const (
	RpcUNKNOWN_COMMAND = 30
	RpcINVALID_PARAMS  = 31
	RpcINTERNAL        = 32
	RpcNOT_FOUND       = 33
	RpcBAD_SYNTAX      = 34
)

// RpcError is an error returned by an RPC method.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message"`
}

func (e *RpcError) Error() string { return e.ErrorString + ": " + e.Message }

// NewRpcError creates an RpcError.
func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcUNKNOWN_COMMAND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorNotFound(message string) *RpcError {
	return NewRpcError(RpcNOT_FOUND, "notFound", message)
}
