package locator

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// DefaultEventSource is the CloudEvents source used when none is configured.
const DefaultEventSource = "locator"

// Locator stores services under string keys derived from a type parameter and
// an optional explicit name. Values are stored untyped and re-checked against
// the requested type on every retrieval.
//
// A Locator is safe for concurrent use. The zero value is not usable; create
// one with New.
type Locator struct {
	mu       sync.RWMutex
	services map[string]any
	order    []string

	// flight serialises get-or-create per key so only one constructor runs.
	flight singleflight.Group

	observerMu sync.RWMutex
	observers  []*observerRegistration

	logger Logger
	source string
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the logger used to report observer failures.
func WithLogger(logger Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithEventSource sets the CloudEvents source attribute of emitted events.
func WithEventSource(source string) Option {
	return func(l *Locator) {
		if source != "" {
			l.source = source
		}
	}
}

// WithObserver subscribes an observer at construction time. Registration
// errors are reported through the logger, so pass WithLogger first.
func WithObserver(o Observer, eventTypes ...string) Option {
	return func(l *Locator) {
		if err := l.RegisterObserver(o, eventTypes...); err != nil {
			l.logger.Error("Failed to register observer", "error", err)
		}
	}
}

// New creates an empty Locator.
func New(opts ...Option) *Locator {
	l := &Locator{
		services: make(map[string]any),
		logger:   nopLogger{},
		source:   DefaultEventSource,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLocator atomic.Pointer[Locator]

func init() {
	defaultLocator.Store(New())
}

// Default returns the process-wide Locator. Libraries should accept a
// *Locator instead of reaching for the default one.
func Default() *Locator {
	return defaultLocator.Load()
}

// SetDefault replaces the process-wide Locator. A nil l is ignored.
func SetDefault(l *Locator) {
	if l != nil {
		defaultLocator.Store(l)
	}
}

// Names returns the registered keys in insertion order.
func (l *Locator) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.order)
}

// Len returns the number of registered services.
func (l *Locator) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.services)
}

// Has reports whether key is registered. key is a raw key as returned by
// Register or KeyFor.
func (l *Locator) Has(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.services[key]
	return ok
}

// Clear removes every service.
func (l *Locator) Clear() {
	l.mu.Lock()
	count := len(l.services)
	clear(l.services)
	l.order = l.order[:0]
	l.mu.Unlock()

	if count > 0 {
		l.emit(EventTypeServiceCleared, ClearedEventData{Count: count}, nil)
	}
}

func (l *Locator) register(key, typeName string, svc any) (string, error) {
	if isNil(svc) {
		return "", newServiceError(ErrNilService, key)
	}

	l.mu.Lock()
	if _, exists := l.services[key]; exists {
		l.mu.Unlock()
		return "", newServiceError(ErrDuplicateService, key)
	}
	l.insertLocked(key, svc)
	l.mu.Unlock()

	l.emitService(EventTypeServiceRegistered, key, typeName)
	return key, nil
}

func (l *Locator) lookup(key string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	svc, ok := l.services[key]
	return svc, ok
}

func (l *Locator) unregister(key, typeName string) error {
	l.mu.Lock()
	if _, exists := l.services[key]; !exists {
		l.mu.Unlock()
		return newServiceError(ErrInexistentService, key)
	}
	delete(l.services, key)
	if i := slices.Index(l.order, key); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}
	l.mu.Unlock()

	l.emitService(EventTypeServiceUnregistered, key, typeName)
	return nil
}

// getOrCreate returns the service stored under key, building and storing one
// with create when absent. Concurrent callers for the same key share a single
// create call; create runs without the table lock held. A panic raised in
// the shared call, including the ErrNilService one, is re-raised by
// singleflight wrapped in its own error type that unwraps to the original.
func (l *Locator) getOrCreate(key, typeName string, create func() any) any {
	if svc, ok := l.lookup(key); ok {
		return svc
	}

	created := false
	svc, _, _ := l.flight.Do(key, func() (any, error) {
		if svc, ok := l.lookup(key); ok {
			return svc, nil
		}

		instance := create()
		if isNil(instance) {
			panic(newServiceError(ErrNilService, key))
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		// an explicit Register may have won while create ran
		if existing, ok := l.services[key]; ok {
			return existing, nil
		}
		l.insertLocked(key, instance)
		created = true
		return instance, nil
	})

	if created {
		l.emitService(EventTypeServiceRegistered, key, typeName)
		l.emitService(EventTypeServiceCreated, key, typeName)
	}
	return svc
}

func (l *Locator) insertLocked(key string, svc any) {
	l.services[key] = svc
	l.order = append(l.order, key)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
