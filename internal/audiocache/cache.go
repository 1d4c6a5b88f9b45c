package audiocache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type blob struct {
	bytes     []byte
	createdAt time.Time
}

// Cache holds synthesized speech clips between the moment the TwiML
// response references them and the provider's playback fetch. Entries
// expire a fixed TTL after creation; the janitor reclaims clips that
// were never fetched (abandoned calls).
type Cache struct {
	mu    sync.RWMutex
	blobs map[string]blob
	ttl   time.Duration
	now   func() time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		blobs: make(map[string]blob),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock overrides the time source for expiry checks. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Put stores the clip under a fresh opaque id and returns the id.
func (c *Cache) Put(audio []byte) string {
	cp := make([]byte, len(audio))
	copy(cp, audio)
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.blobs[id] = blob{bytes: cp, createdAt: c.now()}
	return id
}

// Get returns the clip for id. The boolean distinguishes an absent or
// expired entry from a stored empty payload.
func (c *Cache) Get(id string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.blobs[id]
	if !ok {
		return nil, false
	}
	if c.now().Sub(b.createdAt) >= c.ttl {
		return nil, false
	}
	out := make([]byte, len(b.bytes))
	copy(out, b.bytes)
	return out, true
}

// Len reports the number of blobs currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blobs)
}

// StartJanitor periodically removes expired blobs until ctx is done.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, b := range c.blobs {
		if now.Sub(b.createdAt) >= c.ttl {
			delete(c.blobs, id)
		}
	}
}
