package controller

import "errors"

// Error is the composite failure type crossing the controller boundary:
// every backend, provisioning or signing failure surfaces as one of
// these, with the underlying typed error reachable through Unwrap.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsControllerError checks if error is controller.Error
func IsControllerError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}
