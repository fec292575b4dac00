package redis

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix  = "batchsend:lock:"
	defaultLockTTL = time.Hour
)

// ErrRunLocked is returned when another process holds the lock for the same input.
var ErrRunLocked = errors.New("another batch run holds the lock for this input")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LockConfig struct {
	Addr string
	TTL  time.Duration
}

// Locker hands out per-input run locks backed by redis.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

type Lock struct {
	client *redis.Client
	key    string
	token  string
}

func NewLocker(ctx context.Context, cfg LockConfig) (*Locker, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultLockTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Locker{client: client, ttl: cfg.TTL}, nil
}

// Acquire takes the lock for input or fails with ErrRunLocked.
func (l *Locker) Acquire(ctx context.Context, input string) (*Lock, error) {
	key := lockKey(input)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRunLocked
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

func (l *Locker) Close() error {
	return l.client.Close()
}

func (l *Lock) Key() string {
	return l.key
}

// Release deletes the key only while it still carries this lock's token.
func (l *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

func lockKey(input string) string {
	cleaned := filepath.Clean(strings.TrimSpace(input))
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	return lockKeyPrefix + filepath.ToSlash(cleaned)
}
