package response

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Message: "ok", Data: data}
}

// OKMessageT returns a successful response with a custom message.
func OKMessageT[T any](message string, data T) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Message: message, Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](message string, data T) *APIResponse[T] {
	return &APIResponse[T]{Success: false, Message: message, Data: data}
}
