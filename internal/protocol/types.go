package protocol

import "encoding/json"

// JSON-RPC 2.0 error codes used by the dispatcher.
const (
	CodeParseError       = -32700
	CodeInvalidParams    = -32602
	CodeMethodNotFound   = -32601
	CodeInternalError    = -32603
	CodeMerchantNotFound = -32001
	CodeAgentDisabled    = -32002
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Result  any            `json:"result,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
}

// ResponseError holds JSON-RPC error data.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewResponse wraps a result in a response envelope.
func NewResponse(id any, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// NewErrorResponse wraps an error code and message in a response envelope.
func NewErrorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: message}}
}

// ToolDescriptor describes one callable tool.
type ToolDescriptor struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is the minimal subset needed to describe tool input shapes.
type JSONSchema struct {
	Type        string                `json:"type,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Description string                `json:"description,omitempty"`
}

// ListToolsResult is the payload for tools/list.
type ListToolsResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// CallParams are the parameters of tools/call.
type CallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ContentBlock is one piece of tool output: a natural-language rendering in
// Text plus the structured payload in Data.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Data any    `json:"data,omitempty"`
}

// CallResult is the payload of a successful tools/call.
type CallResult struct {
	Content []ContentBlock `json:"content"`
}

// ResourceDescriptor describes one readable resource.
type ResourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult is the payload for resources/list.
type ListResourcesResult struct {
	Resources []ResourceDescriptor `json:"resources"`
}

// ReadResourceParams are the parameters of resources/read.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ResourceContents is one entry of a resources/read result.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// ReadResourceResult is the payload for resources/read.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}
