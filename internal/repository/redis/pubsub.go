package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/redis/go-redis/v9"
)

// EventsPubSub broadcasts committed status changes on a redis channel so
// that every instance can drop its cached copy.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelEventsChanged(),
	}
}

type eventChangedMsg struct {
	Type   string               `json:"type"`
	Change domain.StatusChanged `json:"change"`
}

func (p *EventsPubSub) NotifyStatusChanged(ctx context.Context, change domain.StatusChanged) error {
	const op = "redisrepo.EventsPubSub.NotifyStatusChanged"

	b, err := json.Marshal(eventChangedMsg{Type: "event_status_changed", Change: change})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe blocks, calling handler for every well-formed message, until ctx
// is done or the subscription is closed.
func (p *EventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, change domain.StatusChanged)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg eventChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil &&
				msg.Change.EventID != uuid.Nil {
				handler(ctx, msg.Change)
			}
		}
	}
}
