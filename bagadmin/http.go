// Package bagadmin exposes read-only introspection over a bag.Bag
// through HTTP and gRPC: size, per-state counts, the pending-borrower
// queue depth, and a string dump of current items. It owns none of
// the bag's lifecycle — it only reads the counters the bag already
// makes public.
package bagadmin

import (
	"fmt"
	"net/http"
	"strings"

	"connbag/bag"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewHTTPServer builds a gin.Engine exposing b's stats as JSON. It
// does not call Run; the caller chooses when and how to serve it.
//
//	GET /size                  -> {"size": 3}
//	GET /count?state=IN_USE    -> {"count": 1}
//	GET /pending                -> {"pending": 0}
//	GET /values?state=NOT_IN_USE -> {"values": ["...", "..."]}
//	POST /dump                  -> logs a dump, {"status": "ok"}
func NewHTTPServer[T bag.Item](b *bag.Bag[T]) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/size", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"size": b.Size()})
	})

	r.GET("/pending", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pending": b.GetPendingQueue()})
	})

	r.GET("/count", func(c *gin.Context) {
		state, err := parseState(c.Query("state"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": b.GetCount(state)})
	})

	r.GET("/values", func(c *gin.Context) {
		state, err := parseState(c.Query("state"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		items := b.Values(state)
		values := make([]string, len(items))
		for i, item := range items {
			values[i] = fmt.Sprintf("%v", item)
		}
		c.JSON(http.StatusOK, gin.H{"values": values})
	})

	r.POST("/dump", func(c *gin.Context) {
		b.DumpState()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func parseState(raw string) (bag.State, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NOT_IN_USE":
		return bag.StateNotInUse, nil
	case "IN_USE":
		return bag.StateInUse, nil
	default:
		return 0, fmt.Errorf("bagadmin: unknown or unsupported state %q (want NOT_IN_USE or IN_USE)", raw)
	}
}
