package mq

// Publisher receives task lifecycle events. Swap Noop for a real broker
// implementation (RabbitMQ / Kafka / NATS) when one is deployed.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type Noop struct{}

func (Noop) Publish(topic string, payload []byte) error { return nil }
