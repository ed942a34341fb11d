package response

// Response is the standard JSON envelope. Errors carry a string tag (e.g.
// TOKEN_EXPIRADO) in Error and an optional human-readable Message; success
// payloads go in Data.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Extra   interface{} `json:"extra,omitempty"`
}

// OK wraps a success payload.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Err wraps an error tag.
func Err(code string) Response {
	return Response{Success: false, Error: code}
}

// ErrWithMessage wraps an error tag plus a human-readable description.
func ErrWithMessage(code, message string) Response {
	return Response{Success: false, Error: code, Message: message}
}

// Paginated wraps a list payload with paging metadata.
func Paginated(data interface{}, page, limit int, total int64) Response {
	return Response{
		Success: true,
		Data:    data,
		Extra: map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	}
}
