package hub

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// RedisFanout relays change events across API instances over a Redis
// pub/sub channel. Each instance publishes its own commits and forwards
// everything received on the channel, its own messages included, into the
// local hub; local-first delivery would reorder events between instances.
type RedisFanout struct {
	client  *redis.Client
	channel string
	local   *Hub
	breaker *gobreaker.CircuitBreaker
	nodeID  string
}

var _ ports.ChangeSink = (*RedisFanout)(nil)

type fanoutEnvelope struct {
	Node  string            `json:"node"`
	Event ports.ChangeEvent `json:"event"`
}

func NewRedisFanout(client *redis.Client, channel, nodeID string, local *Hub, breaker *gobreaker.CircuitBreaker) *RedisFanout {
	return &RedisFanout{
		client:  client,
		channel: channel,
		local:   local,
		breaker: breaker,
		nodeID:  nodeID,
	}
}

// Publish implements ports.ChangeSink. If Redis is unavailable the event is
// delivered locally so single-instance operation degrades instead of going
// silent; cross-instance subscribers catch up from their next snapshot.
func (f *RedisFanout) Publish(evt ports.ChangeEvent) {
	payload, err := json.Marshal(fanoutEnvelope{Node: f.nodeID, Event: evt})
	if err != nil {
		log.Printf("fanout: marshal event %s/%s: %v", evt.Collection, evt.Key, err)
		return
	}
	_, err = f.breaker.Execute(func() (interface{}, error) {
		return nil, f.client.Publish(context.Background(), f.channel, payload).Err()
	})
	if err != nil {
		log.Printf("fanout: publish %s/%s v%d failed, delivering locally: %v", evt.Collection, evt.Key, evt.Version, err)
		f.local.Publish(evt)
	}
}

// Run forwards channel traffic into the local hub until ctx is cancelled.
func (f *RedisFanout) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	// Force the SUBSCRIBE round trip so startup fails loudly when Redis
	// is misconfigured.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env fanoutEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("fanout: discard malformed message: %v", err)
				continue
			}
			f.local.Publish(env.Event)
		}
	}
}
