package notify

import (
	"fmt"
	"time"

	"github.com/ipaynotify/ipaynotify/pkg/redis"
)

// Dedupe suppresses repeat reminders inside a rolling window. The marker is
// an atomic SETNX with a TTL, so concurrent sweeps cannot double-send.
type Dedupe struct {
	store  redis.RedisAdapter
	window time.Duration
}

func NewDedupe(store redis.RedisAdapter, window time.Duration) *Dedupe {
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Dedupe{store: store, window: window}
}

func reminderKey(customerID int64, kind Event) string {
	return fmt.Sprintf("reminder:%d:%s", customerID, kind)
}

// Acquire claims the send slot for one customer and message kind. It returns
// false when a reminder of that kind went out within the window.
func (d *Dedupe) Acquire(customerID int64, kind Event) (bool, error) {
	return d.store.SetNX(reminderKey(customerID, kind), []byte("1"), d.window)
}

// Release frees the slot so a failed send can be retried immediately.
func (d *Dedupe) Release(customerID int64, kind Event) error {
	return d.store.Del(reminderKey(customerID, kind))
}
