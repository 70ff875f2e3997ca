package event

import "sync"

// EventBus 同進程事件匯流排，handlers 為顯式的觀察者列表。
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) RegisterHandler(eventName string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventName] = append(eb.handlers[eventName], handler)
}

// Publish 同步派發事件給所有已註冊的觀察者。
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	handlers := eb.handlers[event.EventName()]
	eb.mu.RUnlock()

	for _, handler := range handlers {
		handler.Handle(event)
	}
}
