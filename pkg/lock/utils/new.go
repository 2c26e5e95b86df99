// Package lockutils builds the configured rebuild lock.
package lockutils

import (
	"context"
	"fmt"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock/local"
	redislock "github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock/redis"
)

// RebuildLockName is the lock key shared by every replica.
const RebuildLockName = "rebuild"

type NewLockerOpts struct {
	ProviderType string
	RedisAddr    string
	TTL          time.Duration
}

// NewLocker returns the locker and a close function for its resources.
func NewLocker(ctx context.Context, o *NewLockerOpts) (lock.Locker, func() error, error) {
	switch o.ProviderType {
	case "local", "":
		return local.NewLocker(), func() error { return nil }, nil
	case "redis":
		if o.RedisAddr == "" {
			return nil, nil, fmt.Errorf("redis lock requires an address")
		}
		client, err := redislock.NewClient(ctx, o.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return redislock.NewLocker(client, RebuildLockName, o.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock provider: %s", o.ProviderType)
	}
}
