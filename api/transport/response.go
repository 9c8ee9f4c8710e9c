package transport

import (
	"errors"

	"github.com/fastygo/taskboard/domain"
)

// Envelope statuses.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusDegraded = "degraded"
)

// CodeDegraded marks a health report with at least one unhealthy dependency.
const CodeDegraded = "DEGRADED"

// Envelope is the wrapper around every API response body.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   *Meta       `json:"meta,omitempty"`
}

// Meta ties a response to the request id echoed in X-Request-ID.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

// NewMeta returns nil when there is no request id to report.
func NewMeta(requestID string) *Meta {
	if requestID == "" {
		return nil
	}
	return &Meta{RequestID: requestID}
}

func NewSuccess(data interface{}, meta *Meta) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError classifies err. Domain errors expose their code and message;
// anything else is reported as INTERNAL without detail.
func NewError(err error, meta *Meta) Envelope {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return Envelope{Status: StatusError, Code: string(domain.ErrCodeInternal), Error: "internal error", Meta: meta}
	}
	return Envelope{Status: StatusError, Code: string(dErr.Code), Error: err.Error(), Meta: meta}
}

// NewDegraded reports unhealthy dependencies alongside the health payload.
func NewDegraded(report interface{}, meta *Meta) Envelope {
	return Envelope{
		Status: StatusDegraded,
		Code:   CodeDegraded,
		Data:   report,
		Error:  "dependencies unhealthy",
		Meta:   meta,
	}
}
