package locator

// Initializer is implemented by default-constructible services that need to
// finish their own setup after allocation. GetOrRegister calls Init once on
// the instance it creates, before the instance becomes visible.
type Initializer interface {
	Init()
}

// Register stores svc under the canonical name of T.
//
// The key is derived from the type parameter, not from the dynamic type of
// svc: Register[Toggler](l, impl) and Register(l, impl) store the same object
// under two different keys. It fails with ErrDuplicateService when the key is
// taken and with ErrNilService when svc is nil.
func Register[T any](l *Locator, svc T) (string, error) {
	return RegisterNamed(l, "", svc)
}

// RegisterNamed stores svc under name, or under the canonical name of T when
// name is empty.
func RegisterNamed[T any](l *Locator, name string, svc T) (string, error) {
	return l.register(KeyFor[T](name), TypeName[T](), svc)
}

// Get returns the service stored under the canonical name of T.
func Get[T any](l *Locator) (T, error) {
	return GetNamed[T](l, "")
}

// GetNamed returns the service stored under name, or under the canonical name
// of T when name is empty. It fails with ErrInexistentService when nothing is
// stored under the key and with ErrTypeMismatch when the stored value is not
// a T. The returned value is the registered instance itself.
func GetNamed[T any](l *Locator, name string) (T, error) {
	key := KeyFor[T](name)

	var zero T
	stored, ok := l.lookup(key)
	if !ok {
		return zero, newServiceError(ErrInexistentService, key)
	}
	svc, ok := stored.(T)
	if !ok {
		return zero, newServiceError(ErrTypeMismatch, key)
	}
	return svc, nil
}

// Unregister removes the service stored under the canonical name of T.
func Unregister[T any](l *Locator) error {
	return UnregisterNamed[T](l, "")
}

// UnregisterNamed removes the service stored under name, or under the
// canonical name of T when name is empty. The stored value is not type
// checked.
func UnregisterNamed[T any](l *Locator, name string) error {
	return l.unregister(KeyFor[T](name), TypeName[T]())
}

// GetOrRegister returns the *T stored under the canonical name of *T,
// allocating, initialising and registering a new one when absent.
//
// Concurrent callers for the same type receive the same instance. A value of
// another type stored under the key is a programming error and panics with a
// *ServiceError wrapping ErrTypeMismatch.
func GetOrRegister[T any](l *Locator) *T {
	return GetOrRegisterFunc(l, func() *T {
		svc := new(T)
		if initializer, ok := any(svc).(Initializer); ok {
			initializer.Init()
		}
		return svc
	})
}

// GetOrRegisterFunc is GetOrRegister for capability types that cannot be
// allocated with new, typically interfaces. factory is called at most once
// per key among concurrent callers and must not request T itself from l.
// A nil result from factory panics with a value wrapping a *ServiceError for
// ErrNilService; recover it with errors.Is or errors.As, not a type assertion.
func GetOrRegisterFunc[T any](l *Locator, factory func() T) T {
	key := TypeName[T]()

	stored := l.getOrCreate(key, key, func() any { return factory() })
	svc, ok := stored.(T)
	if !ok {
		panic(newServiceError(ErrTypeMismatch, key))
	}
	return svc
}

// MustGet is Get for bootstrap code where a missing service is fatal.
func MustGet[T any](l *Locator) T {
	svc, err := Get[T](l)
	if err != nil {
		panic(err)
	}
	return svc
}
