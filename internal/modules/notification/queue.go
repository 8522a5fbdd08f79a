// README: Status-change notification queue backed by a Redis list.
package notification

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"revline/internal/modules/order"
)

const (
	queueKey = "notifications:orders"
	// Keep the queue bounded; downstream consumers drain it out-of-band.
	maxQueued = 10000
)

type Queue struct {
	redis *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

// StatusChanged enqueues one event per successful transition. Delivery
// (email, push) happens outside this service.
func (q *Queue) StatusChanged(ctx context.Context, evt order.StatusChange) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	pipe := q.redis.Pipeline()
	pipe.LPush(ctx, queueKey, payload)
	pipe.LTrim(ctx, queueKey, 0, maxQueued-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to n most recent events, newest first.
func (q *Queue) Recent(ctx context.Context, n int) ([]order.StatusChange, error) {
	if n <= 0 {
		n = 50
	}
	raw, err := q.redis.LRange(ctx, queueKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]order.StatusChange, 0, len(raw))
	for _, r := range raw {
		var evt order.StatusChange
		if err := json.Unmarshal([]byte(r), &evt); err != nil {
			continue
		}
		out = append(out, evt)
	}
	return out, nil
}
