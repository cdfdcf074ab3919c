package locator

import (
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// NewCloudEvent creates a CloudEvent with a time-ordered ID, the given type
// and source, a JSON payload and optional extensions.
func NewCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}

	for key, value := range metadata {
		event.SetExtension(key, value)
	}

	return event
}

// generateEventID returns a UUIDv7, falling back to v4.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// ServiceEventDataOf decodes the payload of a registered, unregistered or
// created event.
func ServiceEventDataOf(event cloudevents.Event) (ServiceEventData, error) {
	var data ServiceEventData
	if err := event.DataAs(&data); err != nil {
		return data, fmt.Errorf("decode %s event: %w", event.Type(), err)
	}
	return data, nil
}
