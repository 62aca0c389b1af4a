package feed

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Listener subscribes to the items and profiles channels and runs one
// reconciliation handler per entity kind. Handlers receive only the fact
// that something changed; reconnection and backoff belong to the redis
// client, not here.
type Listener struct {
	client   *redis.Client
	log      zerolog.Logger
	handlers map[Entity]func(ctx context.Context)

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

func NewListener(client *redis.Client, log zerolog.Logger) *Listener {
	return &Listener{
		client:   client,
		log:      log,
		handlers: make(map[Entity]func(ctx context.Context)),
	}
}

// On registers the reconciliation handler for an entity kind. Must be
// called before Start.
func (l *Listener) On(entity Entity, handler func(ctx context.Context)) {
	l.handlers[entity] = handler
}

// Start subscribes to every registered entity channel and dispatches
// events until Close or context cancellation.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	channels := make([]string, 0, len(l.handlers))
	byChannel := make(map[string]Entity, len(l.handlers))
	for entity := range l.handlers {
		ch := channelFor(entity)
		channels = append(channels, ch)
		byChannel[ch] = entity
	}

	pubsub := l.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.pubsub = pubsub
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		msgs := pubsub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				entity, known := byChannel[msg.Channel]
				if !known {
					continue
				}
				l.log.Debug().Str("entity", string(entity)).Msg("change feed event")
				if handler := l.handlers[entity]; handler != nil {
					handler(runCtx)
				}
			}
		}
	}()

	return nil
}

// Close tears down the subscriptions. In-flight reconciliations finish
// on their own; outstanding writes are never aborted.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pubsub == nil {
		return nil
	}
	l.cancel()
	err := l.pubsub.Close()
	<-l.done
	l.pubsub = nil
	return err
}
