package provisioner

import (
	"context"
	"fmt"
	"sync/atomic"

	"connbag/bag"

	"github.com/redis/go-redis/v9"
)

// RedisProvisioner implements bag.Listener by dialing a fresh
// *redis.Client and handing it to the bag whenever a borrower's scan
// comes up empty.
type RedisProvisioner struct {
	Bag  *bag.Bag[*Conn]
	Opts *redis.Options
	Addr string // for diagnostics; Opts.Addr is authoritative

	// MaxConns caps how many connections this provisioner will ever
	// create, 0 meaning unlimited.
	MaxConns int

	// DemandBus, if non-nil, is notified every time this provisioner
	// is asked to provision a connection, so sibling instances sharing
	// the same backing Redis can react to demand they did not
	// directly observe.
	DemandBus *Bus

	// Source identifies this instance in published DemandEvents.
	Source string

	provisioned atomic.Int64

	// dial builds and health-checks a client; overridable in tests so
	// they don't need a real Redis server.
	dial func(ctx context.Context, opts *redis.Options) (*redis.Client, error)
}

// NewRedisProvisioner builds a RedisProvisioner dialing opts.Addr on
// every AddBagItem call.
func NewRedisProvisioner(b *bag.Bag[*Conn], opts *redis.Options) *RedisProvisioner {
	return &RedisProvisioner{
		Bag:  b,
		Opts: opts,
		Addr: opts.Addr,
		dial: dialAndPing,
	}
}

func dialAndPing(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// AddBagItem implements bag.Listener. It dials and pings a new Redis
// client, and on success adds it to the bag. Failures and the
// soft-limit case are logged, not returned: the bag.Listener contract
// has no error channel, since the borrower that triggered the upcall
// is not waiting on its outcome.
func (p *RedisProvisioner) AddBagItem(ctx context.Context) {
	if err := p.DemandBus.Publish(DemandEvent{Source: p.Source}); err != nil {
		logger.Warn("failed to publish demand event", "err", err)
	}

	if p.MaxConns > 0 && int(p.provisioned.Load()) >= p.MaxConns {
		logger.Warn("not provisioning: max connections reached", "max", p.MaxConns)
		return
	}

	client, err := p.dial(ctx, p.Opts)
	if err != nil {
		logger.Error("failed to provision a connection", "addr", p.Opts.Addr, "err", err)
		return
	}

	conn := &Conn{client: client, addr: p.Opts.Addr}
	if err := p.Bag.Add(conn); err != nil {
		logger.Error("failed to add a provisioned connection to the bag", "err", err)
		_ = client.Close()
		return
	}

	p.provisioned.Add(1)
	logger.Info("provisioned a connection", "addr", p.Opts.Addr, "total", p.provisioned.Load())
}

// ListenForSiblingDemand runs until ctx is done, provisioning a new
// connection for every DemandEvent this instance did not itself
// publish — the cross-process half of the demand bus. Pass the same
// ctx used elsewhere for shutdown.
func (p *RedisProvisioner) ListenForSiblingDemand(ctx context.Context) {
	if p.DemandBus == nil {
		return
	}
	events := p.DemandBus.Subscribe()
	for {
		select {
		case res, ok := <-events:
			if !ok {
				return
			}
			if res.Err != nil {
				logger.Warn("demand bus delivered a malformed event", "err", res.Err)
				continue
			}
			if res.Ok.Source == p.Source {
				continue // our own publish, ignore
			}
			p.AddBagItem(ctx)
		case <-ctx.Done():
			return
		}
	}
}
