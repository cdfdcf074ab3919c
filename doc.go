// Package locator provides a type-aware service registry.
//
// Services are stored under a key that is either an explicit name or the
// canonical name of the type parameter used in the call, and are checked
// against the requested type again on every retrieval:
//
//	l := locator.New()
//	if _, err := locator.Register[Toggler](l, &toggleService{}); err != nil {
//		return err
//	}
//	t, err := locator.Get[Toggler](l)
//
// Failures are *ServiceError values wrapping ErrDuplicateService,
// ErrInexistentService, ErrTypeMismatch or ErrNilService.
//
// GetOrRegister and GetOrRegisterFunc implement find-or-create: concurrent
// first use of the same type builds exactly one instance.
//
// Registry changes are published as CloudEvents to registered Observers.
package locator
