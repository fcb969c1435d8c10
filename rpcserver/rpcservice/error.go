package rpcservice

import "fmt"

// RPCErrorCode enumerates the JSON-RPC error codes this node's inbound API
// returns, following the teacher's rpcservice.RPCError convention
// (http_burn.go / http_swapbeacon.go both construct errors through this
// type rather than a bare error string).
type RPCErrorCode int

const (
	RPCInvalidParamsError RPCErrorCode = -32602
	RPCInvalidRequestError RPCErrorCode = -32600
	RPCInternalError       RPCErrorCode = -32603
	UnexpectedError        RPCErrorCode = -1000
)

var errCodeMessage = map[RPCErrorCode]string{
	RPCInvalidParamsError:  "Invalid parameters",
	RPCInvalidRequestError: "Invalid request",
	RPCInternalError:       "Internal error",
	UnexpectedError:        "Unexpected error",
}

// RPCError is the error shape every inbound handler returns.
type RPCError struct {
	Code       RPCErrorCode
	Message    string
	StackTrace string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%d: %s %s", e.Code, e.Message, e.StackTrace)
}

// NewRPCError constructs an RPCError the way the teacher's handlers do:
// a code, an optional wrapped cause appended to the base message.
func NewRPCError(code RPCErrorCode, err error) *RPCError {
	msg := errCodeMessage[code]
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &RPCError{Code: code, Message: msg}
}
