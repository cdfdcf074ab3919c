package locator

import (
	"context"
	"fmt"
	"slices"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives registry lifecycle events. Observers are notified
// synchronously on the goroutine that performed the operation, after the
// registry lock has been released, so an observer may call back into the
// Locator.
type Observer interface {
	// OnEvent handles a single event. A returned error is reported through
	// the Locator's logger and never fails the originating operation.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by a Locator.
const (
	EventTypeServiceRegistered   = "com.locator.service.registered"
	EventTypeServiceUnregistered = "com.locator.service.unregistered"
	EventTypeServiceCreated      = "com.locator.service.created"
	EventTypeServiceCleared      = "com.locator.service.cleared"
)

// ExtensionServiceKey is the CloudEvents extension carrying the affected key
// on registered, unregistered and created events, so consumers can route
// without decoding the payload.
const ExtensionServiceKey = "servicekey"

// ServiceEventData is the payload of registered, unregistered and created
// events.
type ServiceEventData struct {
	Key  string `json:"key"`
	Type string `json:"type,omitempty"`
}

// ClearedEventData is the payload of a cleared event.
type ClearedEventData struct {
	Count int `json:"count"`
}

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that delegates to handler.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

// observerRegistration keeps eventTypes in subscription order for Observers;
// filter is the same set for lookups.
type observerRegistration struct {
	observer     Observer
	eventTypes   []string
	filter       map[string]bool
	registeredAt time.Time
}

// RegisterObserver subscribes o to the given event types, or to every event
// when none are given.
func (l *Locator) RegisterObserver(o Observer, eventTypes ...string) error {
	if o == nil {
		return ErrObserverNil
	}
	id := o.ObserverID()
	if id == "" {
		return ErrObserverIDEmpty
	}

	l.observerMu.Lock()
	defer l.observerMu.Unlock()

	for _, reg := range l.observers {
		if reg.observer.ObserverID() == id {
			return fmt.Errorf("%w: %s", ErrObserverRegistered, id)
		}
	}

	reg := &observerRegistration{
		observer:     o,
		filter:       make(map[string]bool, len(eventTypes)),
		registeredAt: time.Now(),
	}
	for _, t := range eventTypes {
		if reg.filter[t] {
			continue
		}
		reg.filter[t] = true
		reg.eventTypes = append(reg.eventTypes, t)
	}
	l.observers = append(l.observers, reg)
	return nil
}

// UnregisterObserver removes o.
func (l *Locator) UnregisterObserver(o Observer) error {
	if o == nil {
		return ErrObserverNil
	}

	l.observerMu.Lock()
	defer l.observerMu.Unlock()

	id := o.ObserverID()
	for i, reg := range l.observers {
		if reg.observer.ObserverID() == id {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrObserverNotFound, id)
}

// Observers lists the registered observers in registration order.
func (l *Locator) Observers() []ObserverInfo {
	l.observerMu.RLock()
	defer l.observerMu.RUnlock()

	infos := make([]ObserverInfo, 0, len(l.observers))
	for _, reg := range l.observers {
		infos = append(infos, ObserverInfo{
			ID:           reg.observer.ObserverID(),
			EventTypes:   slices.Clone(reg.eventTypes),
			RegisteredAt: reg.registeredAt,
		})
	}
	return infos
}

// notify delivers event to every interested observer. Must not be called with
// l.mu held.
func (l *Locator) notify(event cloudevents.Event) {
	l.observerMu.RLock()
	if len(l.observers) == 0 {
		l.observerMu.RUnlock()
		return
	}
	targets := make([]*observerRegistration, 0, len(l.observers))
	for _, reg := range l.observers {
		if len(reg.filter) > 0 && !reg.filter[event.Type()] {
			continue
		}
		targets = append(targets, reg)
	}
	l.observerMu.RUnlock()

	ctx := context.Background()
	for _, reg := range targets {
		l.deliver(ctx, reg.observer, event)
	}
}

func (l *Locator) deliver(ctx context.Context, o Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Observer panicked", "observerID", o.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := o.OnEvent(ctx, event); err != nil {
		l.logger.Error("Observer error", "observerID", o.ObserverID(), "event", event.Type(), "error", err)
	}
}

func (l *Locator) hasObservers() bool {
	l.observerMu.RLock()
	defer l.observerMu.RUnlock()
	return len(l.observers) > 0
}

// emit builds and delivers an event when anyone is listening.
func (l *Locator) emit(eventType string, data any, extensions map[string]any) {
	if !l.hasObservers() {
		return
	}
	l.notify(NewCloudEvent(eventType, l.source, data, extensions))
}

func (l *Locator) emitService(eventType, key, typeName string) {
	l.emit(eventType, ServiceEventData{Key: key, Type: typeName}, map[string]any{ExtensionServiceKey: key})
}
