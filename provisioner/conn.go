// Package provisioner supplies bag.Item payloads for the demo: pooled
// Redis connections, provisioned on demand through a bag.Listener.
package provisioner

import (
	"connbag/bag"

	"github.com/redis/go-redis/v9"
)

// Conn is a poolable Redis connection: a *redis.Client plus the state
// cell a Bag requires of every item.
type Conn struct {
	bag.Entry

	client *redis.Client
	addr   string
}

func (c *Conn) BagEntry() *bag.Entry {
	return &c.Entry
}

// Client returns the underlying *redis.Client, valid for as long as
// this Conn remains borrowed.
func (c *Conn) Client() *redis.Client {
	return c.client
}

// Addr is the address this connection dials, kept for diagnostics.
func (c *Conn) Addr() string {
	return c.addr
}

// Close closes the underlying Redis client. Callers should only close
// a Conn after removing it from its bag (bag.Bag.Remove); closing a
// still-registered Conn leaves a dead client reachable by other
// borrowers.
func (c *Conn) Close() error {
	return c.client.Close()
}
