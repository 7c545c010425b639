package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	kafka "github.com/segmentio/kafka-go"
)

// Kafka dispatches events as Kafka messages keyed by Event.Key, following
// the teacher's queue/pubsub.Publisher shape. Subscribe starts a reader
// loop on first call; handlers registered afterward share that loop.
type Kafka struct {
	writer *kafka.Writer
	reader *kafka.Reader
	logger *slog.Logger

	handlersMu sync.RWMutex
	handlers   []func(Event)
	started    bool
}

// NewKafka wraps an already-configured writer/reader pair pointed at the
// same topic.
func NewKafka(writer *kafka.Writer, reader *kafka.Reader) *Kafka {
	return &Kafka{writer: writer, reader: reader, logger: slog.Default()}
}

// Dispatch marshals evt and publishes it from a new goroutine, so it returns
// before the write call completes; publish errors are logged, not returned,
// so a broker hiccup never fails the calling primitive.
func (k *Kafka) Dispatch(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		k.logger.Error("eventbus: marshal event", "err", err)
		return
	}

	go func() {
		werr := k.writer.WriteMessages(context.WithoutCancel(ctx), kafka.Message{
			Key:   []byte(evt.Key),
			Value: payload,
		})
		if werr != nil {
			k.logger.Error("eventbus: publish event", "err", werr)
		}
	}()
}

func (k *Kafka) Subscribe(handler func(Event)) func() {
	k.handlersMu.Lock()
	defer k.handlersMu.Unlock()

	k.handlers = append(k.handlers, handler)
	idx := len(k.handlers) - 1
	if !k.started {
		k.started = true
		go k.loop()
	}

	return func() {
		k.handlersMu.Lock()
		defer k.handlersMu.Unlock()
		if idx < len(k.handlers) {
			k.handlers[idx] = nil
		}
	}
}

func (k *Kafka) loop() {
	for {
		msg, err := k.reader.ReadMessage(context.Background())
		if err != nil {
			k.logger.Error("eventbus: read message", "err", err)
			return
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			k.logger.Error("eventbus: unmarshal event", "err", err)
			continue
		}

		k.handlersMu.RLock()
		handlers := make([]func(Event), len(k.handlers))
		copy(handlers, k.handlers)
		k.handlersMu.RUnlock()

		for _, h := range handlers {
			if h != nil {
				safeCall(h, evt)
			}
		}
	}
}

func (k *Kafka) Close() error {
	if err := k.writer.Close(); err != nil {
		return err
	}
	return k.reader.Close()
}

var _ Bus = (*Kafka)(nil)
