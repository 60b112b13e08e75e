package shtp

import "errors"

// Status is the closed set of error kinds an Endpoint operation can fail
// with, matching the reference implementation's status codes one to one.
type Status int

const (
	// StatusOk indicates success. Endpoint methods return a nil error on
	// success, so this value only appears inside a StatusError when
	// constructing one manually.
	StatusOk Status = iota

	// StatusBadParam indicates an out-of-range channel or an oversize
	// payload.
	StatusBadParam

	// StatusHalError indicates the HAL's Write returned a non-nil error.
	StatusHalError

	// StatusNoInstance indicates Pool.Open could not allocate an endpoint
	// slot.
	StatusNoInstance

	// StatusHalOpenFailed indicates the HAL's Open returned a non-nil
	// error.
	StatusHalOpenFailed
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusBadParam:
		return "BadParam"
	case StatusHalError:
		return "HalError"
	case StatusNoInstance:
		return "NoInstance"
	case StatusHalOpenFailed:
		return "HalOpenFailed"
	default:
		return "Unknown"
	}
}

// StatusError pairs a Status with the sentinel error it wraps, so callers
// can both errors.Is against a sentinel below and inspect the specific
// kind via Status().
type StatusError struct {
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func newStatusError(status Status, err error) *StatusError {
	return &StatusError{Status: status, Err: err}
}

// Sentinel errors. Compare against these with errors.Is, or inspect the
// returned *StatusError's Status field for the specific kind.
var (
	ErrBadChannel      = errors.New("shtp: channel out of range")
	ErrPayloadTooLarge = errors.New("shtp: payload exceeds MaxPayloadOut")
	ErrHal             = errors.New("shtp: hal write failed")
	ErrNoInstance      = errors.New("shtp: no free endpoint instance")
	ErrHalOpenFailed   = errors.New("shtp: hal open failed")
	ErrClosed          = errors.New("shtp: endpoint is closed")
)
