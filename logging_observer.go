package locator

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// LoggingObserverID is the ObserverID of observers built by NewLoggingObserver.
const LoggingObserverID = "locator.logging"

type loggingObserver struct {
	logger Logger
}

// NewLoggingObserver returns an observer that writes one structured log line
// per registry event.
func NewLoggingObserver(logger Logger) Observer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &loggingObserver{logger: logger}
}

func (o *loggingObserver) ObserverID() string {
	return LoggingObserverID
}

func (o *loggingObserver) OnEvent(_ context.Context, event cloudevents.Event) error {
	switch event.Type() {
	case EventTypeServiceCleared:
		var data ClearedEventData
		if err := event.DataAs(&data); err != nil {
			return err
		}
		o.logger.Info("Services cleared", "count", data.Count, "source", event.Source())
	case EventTypeServiceRegistered, EventTypeServiceUnregistered, EventTypeServiceCreated:
		data, err := ServiceEventDataOf(event)
		if err != nil {
			return err
		}
		o.logger.Debug(eventMessage(event.Type()), "key", data.Key, "type", data.Type, "source", event.Source())
	default:
		o.logger.Debug("Unknown locator event", "event", event.Type())
	}
	return nil
}

func eventMessage(eventType string) string {
	switch eventType {
	case EventTypeServiceRegistered:
		return "Service registered"
	case EventTypeServiceUnregistered:
		return "Service unregistered"
	case EventTypeServiceCreated:
		return "Service created on first use"
	default:
		return eventType
	}
}
