package client

import (
	"context"
	"time"
)

// Default poll cadences, matching the web app.
const (
	DefaultMessageInterval = 2 * time.Second
	DefaultAudioInterval   = 5 * time.Second
)

// Subscription is an owned polling task. It stops when its context is
// cancelled or Stop is called; Stop waits for the loop to exit so no orphaned
// timer outlives the screen that started it.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the subscription and waits for the poll loop to finish.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// Done exposes loop termination for select-based callers.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// SubscribeMessages polls the message channel and invokes onMessage once per
// newly seen message id. Fetch failures leave local state untouched; the loop
// just waits for the next tick. Ticks are serialized: a fetch slower than the
// interval delays the next poll instead of overlapping it.
func (c *Client) SubscribeMessages(ctx context.Context, code string, interval time.Duration, onMessage func(Message)) *Subscription {
	if interval <= 0 {
		interval = DefaultMessageInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		seen := make(map[string]struct{})
		lastRow := 1

		fetch := func() {
			result, err := c.Messages(ctx, code, lastRow)
			if err != nil || result.Error != "" {
				return
			}
			for _, msg := range result.Messages {
				if _, ok := seen[msg.ID]; ok {
					continue
				}
				seen[msg.ID] = struct{}{}
				onMessage(msg)
			}
			if result.LastRow > lastRow {
				lastRow = result.LastRow
			}
		}

		fetch()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fetch()
			}
		}
	}()

	return sub
}

// SubscribeAudio polls the playback queue for the listener and invokes onItem
// once per new item id, advancing the id cursor only past delivered items.
func (c *Client) SubscribeAudio(ctx context.Context, code, listener string, interval time.Duration, onItem func(AudioItem)) *Subscription {
	if interval <= 0 {
		interval = DefaultAudioInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		seen := make(map[int64]struct{})
		var lastID int64

		fetch := func() {
			result, err := c.AudioQueue(ctx, code, listener, lastID)
			if err != nil {
				return
			}
			for _, item := range result.Queue {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
				onItem(item)
			}
			if result.LastID > lastID {
				lastID = result.LastID
			}
		}

		fetch()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fetch()
			}
		}
	}()

	return sub
}
