// Package joblock guards each escalation job against overlapping invocations
// of the same tier. Cron timers fire on fixed periods, but a slow run can
// outlast its period; without the lock a second invocation would re-scan the
// same candidates and double-send.
package joblock

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:embed release.lua
var releaseScript string

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Lock provides per-job mutual exclusion using Redis SETNX with a TTL.
// The TTL bounds how long a crashed invocation can block its successors.
type Lock struct {
	redis   *redis.Client
	release *redis.Script
	ttl     time.Duration
	logger  Logger
}

// New creates a new job lock
func New(redisClient *redis.Client, ttl time.Duration, logger Logger) *Lock {
	return &Lock{
		redis:   redisClient,
		release: redis.NewScript(releaseScript),
		ttl:     ttl,
		logger:  logger,
	}
}

// Acquire attempts to take the lock for the named job. On success it returns
// acquired=true and a release function to defer. When another invocation
// holds the lock it returns acquired=false.
//
// A Redis outage fails open: the job runs unguarded rather than silently
// skipping its scheduled tick.
func (l *Lock) Acquire(ctx context.Context, job string) (release func(), acquired bool) {
	key := fmt.Sprintf("job_lock:%s", job)
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("job lock unavailable, running unguarded", "job", job, "error", err)
		return func() {}, true
	}

	if !ok {
		l.logger.Info("job lock held by another invocation, skipping", "job", job)
		return func() {}, false
	}

	l.logger.Debug("job lock acquired", "job", job, "ttl", l.ttl)

	return func() {
		// Value-checked delete so an invocation that outlived its TTL
		// cannot release a successor's lock.
		if err := l.release.Run(ctx, l.redis, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("job lock release failed", "job", job, "error", err)
		}
	}, true
}
