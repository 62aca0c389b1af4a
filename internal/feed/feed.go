// Package feed carries row-level change notifications between connected
// clients over redis pub/sub. Events say only which entity kind changed;
// consumers reload rather than patch.
package feed

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Entity string

const (
	EntityItems    Entity = "items"
	EntityProfiles Entity = "profiles"
)

func channelFor(entity Entity) string {
	return "feed:" + string(entity)
}

// Publisher announces a mutation on an entity's table. Publish failures
// are logged, not returned: the mutation already succeeded and other
// clients will converge on their next reload.
type Publisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewPublisher(client *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) Notify(ctx context.Context, entity Entity) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Publish(ctx, channelFor(entity), "changed").Err(); err != nil {
		p.log.Warn().Err(err).Str("entity", string(entity)).Msg("feed publish failed")
	}
}
