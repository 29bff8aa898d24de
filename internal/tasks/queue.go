package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrQueueFull is returned by MemoryQueue.Push when the buffer has no room.
var ErrQueueFull = errors.New("task queue is full")

// MemoryQueue is an in-process queue used when Redis is not configured.
type MemoryQueue struct {
	ch chan Task
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Task, size)}
}

// Push never waits for a worker to free a slot.
func (q *MemoryQueue) Push(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Task, error) {
	select {
	case t := <-q.ch:
		return t, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Len returns the number of buffered tasks.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// RedisQueue keeps tasks in a Redis list so they survive a restart.
type RedisQueue struct {
	rdb         *redis.Client
	key         string
	pollTimeout time.Duration
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key, pollTimeout: time.Second}
}

func (q *RedisQueue) Push(ctx context.Context, t Task) error {
	raw, err := encodeTask(t)
	if err != nil {
		return err
	}
	return errors.Wrap(q.rdb.LPush(ctx, q.key, raw).Err(), "redis lpush")
}

func (q *RedisQueue) Pop(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}
		res, err := q.rdb.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Task{}, ctx.Err()
			}
			return Task{}, errors.Wrap(err, "redis brpop")
		}
		// BRPOP returns [key, value]
		if len(res) != 2 {
			continue
		}
		return decodeTask(res[1])
	}
}

func encodeTask(t Task) (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", errors.Wrap(err, "encode task")
	}
	return string(raw), nil
}

func decodeTask(raw string) (Task, error) {
	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Task{}, errors.Wrap(err, "decode task")
	}
	return t, nil
}
