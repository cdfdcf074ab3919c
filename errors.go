package locator

import (
	"errors"
	"fmt"
)

// Locator errors
var (
	// Registry errors
	ErrDuplicateService  = errors.New("service already registered")
	ErrInexistentService = errors.New("service not found")
	ErrTypeMismatch      = errors.New("service doesn't satisfy requested type")
	ErrNilService        = errors.New("service is nil")

	// Observer errors
	ErrObserverNil        = errors.New("observer is nil")
	ErrObserverIDEmpty    = errors.New("observer id is empty")
	ErrObserverRegistered = errors.New("observer already registered")
	ErrObserverNotFound   = errors.New("observer not found")
)

// ServiceError reports a failed registry operation together with the key it
// was computed for. It unwraps to one of the registry sentinels above, so
// callers branch with errors.Is and read the key with errors.As.
type ServiceError struct {
	Key string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Key)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(sentinel error, key string) *ServiceError {
	return &ServiceError{Key: key, Err: sentinel}
}

// KeyOf returns the key carried by err, if err wraps a *ServiceError.
func KeyOf(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Key, true
	}
	return "", false
}
