package gateway

import apperrors "revcloud-gateway/internal/common/errors"

// Status discriminates the gateway outcome. Every request terminates in
// exactly one of these.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnsupported Status = "unsupported"
	StatusError       Status = "error"
)

// ErrorInfo carries enough structure for the caller to act: kind, message and
// the offending slot when validation failed.
type ErrorInfo struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Slot      string `json:"slot,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Response is the only entity crossing the system boundary.
type Response struct {
	Status     Status      `json:"status"`
	RequestID  string      `json:"request_id,omitempty"`
	Intent     string      `json:"intent,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Query      string      `json:"query,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
}

// HTTPStatus maps the response to the status code the HTTP boundary sends.
// Unsupported is a normal outcome and shares 200 with Success.
func (r *Response) HTTPStatus() int {
	if r.Status != StatusError || r.Error == nil {
		return 200
	}
	return apperrors.HTTPStatus(apperrors.ErrorCode(r.Error.Kind))
}

func errorResponse(requestID string, err error) *Response {
	stdErr := apperrors.AsStandard(err)
	return &Response{
		Status:    StatusError,
		RequestID: requestID,
		Error: &ErrorInfo{
			Kind:      string(stdErr.Code),
			Message:   stdErr.Message,
			Slot:      stdErr.Slot(),
			Retryable: stdErr.Retryable,
		},
	}
}
