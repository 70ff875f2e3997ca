package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedEvent struct {
	Name string
	Type string
	Data string
}

func (e recordedEvent) EventName() string {
	return e.Name
}

func (e recordedEvent) EventType() string {
	return e.Type
}

type recordingHandler struct {
	got []Event
}

func (h *recordingHandler) Handle(event Event) {
	h.got = append(h.got, event)
}

func TestEventBusPublish(t *testing.T) {
	bus := NewEventBus()
	handler := &recordingHandler{}
	bus.RegisterHandler("role.changed", handler)

	bus.Publish(recordedEvent{Name: "role.changed", Type: "update", Data: "role_guest"})
	bus.Publish(recordedEvent{Name: "unrelated", Type: "update"})

	assert.Len(t, handler.got, 1)
	assert.Equal(t, "update", handler.got[0].EventType())
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := NewEventBus()
	first := &recordingHandler{}
	second := &recordingHandler{}
	bus.RegisterHandler("role.changed", first)
	bus.RegisterHandler("role.changed", second)

	bus.Publish(recordedEvent{Name: "role.changed", Type: "delete"})

	assert.Len(t, first.got, 1)
	assert.Len(t, second.got, 1)
}
