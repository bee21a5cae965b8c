// Package presence counts the users connected to each neighborhood channel.
package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Tracker records live connections per neighborhood. A user with several
// connections is counted once.
type Tracker interface {
	Join(ctx context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error)
	Leave(ctx context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error)
	Count(ctx context.Context, hood *uuid.UUID) (int, error)
}

const keyTTL = 24 * time.Hour

// Key returns the redis hash holding the online users of hood.
func Key(hood *uuid.UUID) string {
	room := "global"
	if hood != nil {
		room = hood.String()
	}
	return fmt.Sprintf("atalaia:neighborhood:%s:online_users", room)
}

// RedisConfig configures the redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient connects to redis and pings it.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis client connection test failed: %w", err)
	}
	return client, nil
}

// Redis keeps one hash per neighborhood. Each field is a user ID and its value
// the number of open connections of that user.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Join(ctx context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error) {
	key := Key(hood)
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, userID.String(), 1)
	pipe.Expire(ctx, key, keyTTL)
	count := pipe.HLen(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to join %s: %w", key, err)
	}
	return int(count.Val()), nil
}

func (r *Redis) Leave(ctx context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error) {
	key := Key(hood)
	field := userID.String()

	left, err := r.client.HIncrBy(ctx, key, field, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to leave %s: %w", key, err)
	}
	if left <= 0 {
		if err := r.client.HDel(ctx, key, field).Err(); err != nil {
			return 0, fmt.Errorf("failed to remove %s from %s: %w", field, key, err)
		}
	}
	return r.Count(ctx, hood)
}

func (r *Redis) Count(ctx context.Context, hood *uuid.UUID) (int, error) {
	n, err := r.client.HLen(ctx, Key(hood)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", Key(hood), err)
	}
	return int(n), nil
}

// Memory is an in-process Tracker used when redis is not configured.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]map[uuid.UUID]int
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]map[uuid.UUID]int)}
}

func (m *Memory) Join(_ context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(hood)
	room, ok := m.rooms[key]
	if !ok {
		room = make(map[uuid.UUID]int)
		m.rooms[key] = room
	}
	room[userID]++
	return len(room), nil
}

func (m *Memory) Leave(_ context.Context, hood *uuid.UUID, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(hood)
	room := m.rooms[key]
	if room[userID] > 1 {
		room[userID]--
	} else {
		delete(room, userID)
	}
	if len(room) == 0 {
		delete(m.rooms, key)
	}
	return len(room), nil
}

func (m *Memory) Count(_ context.Context, hood *uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms[Key(hood)]), nil
}
