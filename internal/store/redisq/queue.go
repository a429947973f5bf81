package redisq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/b4babl/backend/internal/model/audio"
)

// AudioQueue is the Redis-backed store.AudioQueue. Each session gets its own
// INCR counter and item list, so ids are monotonic within a session and the
// queue stays append-only.
type AudioQueue struct {
	client *redis.Client
}

// NewAudioQueue returns an audio queue over the given Redis client.
func NewAudioQueue(client *redis.Client) *AudioQueue {
	return &AudioQueue{client: client}
}

func seqKey(code string) string   { return fmt.Sprintf("audioq:%s:seq", code) }
func itemsKey(code string) string { return fmt.Sprintf("audioq:%s:items", code) }

func (q *AudioQueue) Enqueue(ctx context.Context, code string, item audio.Item) (int64, error) {
	id, err := q.client.Incr(ctx, seqKey(code)).Result()
	if err != nil {
		return 0, err
	}
	item.ID = id

	data, err := json.Marshal(item)
	if err != nil {
		return 0, err
	}
	if err := q.client.RPush(ctx, itemsKey(code), data).Err(); err != nil {
		return 0, err
	}
	return id, nil
}

func (q *AudioQueue) After(ctx context.Context, code, listener string, sinceID int64) ([]audio.Item, error) {
	entries, err := q.client.LRange(ctx, itemsKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var out []audio.Item
	for _, entry := range entries {
		var item audio.Item
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("decode audio item: %w", err)
		}
		if item.ID > sinceID && item.Listener == listener {
			out = append(out, item)
		}
	}
	return out, nil
}
