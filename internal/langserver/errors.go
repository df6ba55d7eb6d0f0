package langserver

import (
	"errors"
	"fmt"
)

// Standard errors returned by the analysis-server client.
var (
	// ErrNotStarted indicates the session has not been started.
	ErrNotStarted = errors.New("session not started")

	// ErrAlreadyStarted indicates the session is already running.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrShutdown indicates the connection has been shut down.
	ErrShutdown = errors.New("connection shut down")

	// ErrNoSession indicates no session exists for the folder.
	ErrNoSession = errors.New("no session for folder")

	// ErrSessionNotReady indicates the session is not ready for requests.
	ErrSessionNotReady = errors.New("session not ready")

	// ErrServerCrashed indicates the server process terminated unexpectedly.
	ErrServerCrashed = errors.New("server crashed")

	// ErrSupervisorFailed indicates the server exceeded its restart budget.
	ErrSupervisorFailed = errors.New("server permanently failed")

	// ErrInvalidResponse indicates a malformed response from the server.
	ErrInvalidResponse = errors.New("invalid response from server")
)

// RPCError is a JSON-RPC error returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC and LSP error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
)

// SessionError wraps an error with the folder it occurred for.
type SessionError struct {
	Folder string
	Err    error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Folder, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}
