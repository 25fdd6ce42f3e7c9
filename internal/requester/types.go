package requester

import (
	"net/http"
)

// Request represents an outbound HTTP request
type Request struct {
	URL         string
	Method      string
	Body        []byte
	Headers     map[string]string
	ContentType string
}

// Response represents an HTTP response with its body fully read
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// IsSuccess reports whether the status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
