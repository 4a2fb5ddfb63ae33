package client

import (
	"encoding/json"
	"fmt"

	"resty.dev/v3"
)

// APIError is a non-2xx answer from a store. Code and Message are filled from the
// WooCommerce error body ({"code": ..., "message": ...}) when there is one.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: HTTP %d %s: %s", e.Method, e.URL, e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

func newAPIError(method, url string, resp *resty.Response) *APIError {
	apiErr := &APIError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode(),
	}

	body := resp.Bytes()

	var wcErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wcErr); err == nil && (wcErr.Code != "" || wcErr.Message != "") {
		apiErr.Code = wcErr.Code
		apiErr.Message = wcErr.Message
		return apiErr
	}

	if summary, ok := summarizeHTML(body); ok {
		apiErr.Message = summary
		return apiErr
	}

	apiErr.Message = truncate(string(body), 200)
	return apiErr
}
