package notify

import (
	"context"
	"errors"
	"log"

	"github.com/redis/rueidis"
)

// Redis delivers change events over redis pub/sub, one channel per table,
// so several app instances observe each other's mutations.
type Redis struct {
	client rueidis.Client
	prefix string
}

func NewRedis(client rueidis.Client) *Redis {
	return &Redis{client: client, prefix: "choremate:"}
}

func (n *Redis) Subscribe(ctx context.Context, table string, fn func()) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		err := n.client.Receive(
			subCtx,
			n.client.B().Subscribe().Channel(n.prefix+table).Build(),
			func(msg rueidis.PubSubMessage) { fn() },
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("subscription for %s ended: %v", table, err)
		}
	}()

	return cancel, nil
}

func (n *Redis) Publish(ctx context.Context, table string) error {
	cmd := n.client.B().Publish().Channel(n.prefix + table).Message("1").Build()
	return n.client.Do(ctx, cmd).Error()
}
