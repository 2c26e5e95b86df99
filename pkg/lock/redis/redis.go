// Package redis implements lock.Locker with a Redis key so that replicas
// sharing one Redis never rebuild concurrently.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock/local"
)

const (
	keyPrefix = "ragbot:lock:"

	// DefaultTTL bounds how long a crashed holder can block rebuilds. A live
	// holder keeps extending it.
	DefaultTTL = 10 * time.Minute
)

// releaseScript deletes the key only when this acquisition still holds it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// extendScript resets the TTL only when this acquisition still holds the key.
var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Locker implements lock.Locker using SETNX with a TTL. Every acquisition
// writes its own token, and an in-process lock sits in front of Redis so two
// rebuilds in one process never race for the key.
type Locker struct {
	client  redis.UniversalClient
	key     string
	ttl     time.Duration
	ownerID string
	guard   *local.Locker

	mu    sync.Mutex
	token string
	stop  context.CancelFunc
	done  chan struct{}
}

// NewLocker creates a Locker for the named lock.
func NewLocker(client redis.UniversalClient, name string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{
		client:  client,
		key:     keyPrefix + name,
		ttl:     ttl,
		ownerID: generateOwnerID(),
		guard:   local.NewLocker(),
	}
}

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

// generateOwnerID returns hostname:pid:random.
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), randomHex(8))
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (l *Locker) TryLock(ctx context.Context) (bool, error) {
	if ok, _ := l.guard.TryLock(ctx); !ok {
		return false, nil
	}

	token := l.ownerID + ":" + randomHex(4)
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil || !ok {
		_ = l.guard.Unlock(ctx)
		if err != nil {
			return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
		}
		return false, nil
	}

	renewCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})

	l.mu.Lock()
	l.token, l.stop, l.done = token, stop, done
	l.mu.Unlock()

	go l.renew(renewCtx, token, done)
	return true, nil
}

// renew extends the key every third of the TTL until stopped or until the
// key no longer carries token.
func (l *Locker) renew(ctx context.Context, token string, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int64()
			if err == nil && n == 0 {
				return
			}
		}
	}
}

func (l *Locker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	token, stop, done := l.token, l.stop, l.done
	l.token, l.stop, l.done = "", nil, nil
	l.mu.Unlock()

	if token == "" {
		return lock.ErrNotHeld
	}
	stop()
	<-done
	defer func() { _ = l.guard.Unlock(ctx) }()

	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if n == 0 {
		return lock.ErrNotHeld
	}
	return nil
}

// OwnerID identifies this process in Redis. Tokens of its acquisitions start
// with it.
func (l *Locker) OwnerID() string {
	return l.ownerID
}

var _ lock.Locker = (*Locker)(nil)
