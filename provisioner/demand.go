package provisioner

import (
	"connbag/pkg/pubsub"

	"github.com/redis/go-redis/v9"
)

// DemandEvent is broadcast whenever a RedisProvisioner's AddBagItem is
// invoked: some borrower in this process found the bag empty. Other
// processes sharing the same Redis-backed pool can subscribe to react
// by provisioning their own connection, rather than each process
// discovering demand only from its own borrowers.
type DemandEvent struct {
	Source string // arbitrary instance identifier, for diagnostics
}

// Bus wraps a pubsub.PubSub[DemandEvent] with the provisioner-specific
// publish/subscribe shape. A nil *Bus is valid and a no-op: Publish
// does nothing and Subscribe returns a channel that is never sent to.
type Bus struct {
	ps pubsub.PubSub[DemandEvent]
}

// NewRedisBus builds a Bus backed by Redis pub/sub on the given
// channel name.
func NewRedisBus(rdb *redis.Client, channel string) *Bus {
	return &Bus{ps: pubsub.NewPubSubRedis[DemandEvent](channel, rdb)}
}

// NewLocalBus builds a Bus backed by an in-process channel, useful for
// tests and single-process deployments that still want the demand-bus
// code path exercised.
func NewLocalBus() *Bus {
	return &Bus{ps: pubsub.NewPubSubChan[DemandEvent]()}
}

// Publish announces a demand event. A nil Bus silently drops it.
func (b *Bus) Publish(ev DemandEvent) error {
	if b == nil {
		return nil
	}
	return b.ps.Publish(ev)
}

// Subscribe returns a channel of incoming demand events. A nil Bus
// returns a channel that is closed immediately, so a range loop over
// it terminates right away instead of blocking forever.
func (b *Bus) Subscribe() <-chan pubsub.Result[DemandEvent] {
	if b == nil {
		ch := make(chan pubsub.Result[DemandEvent])
		close(ch)
		return ch
	}
	return b.ps.Subscribe()
}
