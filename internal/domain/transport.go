package domain

// InboundMessage is one raw message received from a device topic.
type InboundMessage struct {
	Topic   string
	Payload []byte
}

// TransportPort abstracts the pub/sub transport the orchestrator talks
// through. Publish and Subscribe are expected to bound their own waiting.
type TransportPort interface {
	Publish(topic string, payload []byte, qos byte) error
	Subscribe(topics ...string) error
	IsConnected() bool
	// Messages is the bounded inbound queue drained by the dispatcher.
	Messages() <-chan InboundMessage
}

type EventMessage struct {
	Key   []byte
	Value []byte
}

// EventPublisherPort carries OTA lifecycle events to downstream consumers.
type EventPublisherPort interface {
	Publish(msgs ...EventMessage) error
}
