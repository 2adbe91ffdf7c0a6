package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/coursova/backend/internal/logger"
)

// releaseScript deletes the lease only when this process still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type periodLease struct {
	log   *logger.Logger
	rdb   *goredis.Client
	token string
	ttl   time.Duration
}

// NewPeriodLease returns a redis-backed lease serializing distribution runs
// per period. The TTL bounds how long a crashed run can block its period.
func NewPeriodLease(log *logger.Logger, ttl time.Duration) (*periodLease, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &periodLease{
		log:   log.With("service", "RedisPeriodLease"),
		rdb:   rdb,
		token: fmt.Sprintf("%d-%d", os.Getpid(), time.Now().UnixNano()),
		ttl:   ttl,
	}, nil
}

func (l *periodLease) Acquire(ctx context.Context, period string) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, fmt.Errorf("period lease not initialized")
	}
	ok, err := l.rdb.SetNX(ctx, leaseKey(period), l.token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		l.log.Debug("period lease held elsewhere", "period", period)
	}
	return ok, nil
}

func (l *periodLease) Release(ctx context.Context, period string) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("period lease not initialized")
	}
	return releaseScript.Run(ctx, l.rdb, []string{leaseKey(period)}, l.token).Err()
}

func (l *periodLease) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

func leaseKey(period string) string {
	return "revenue:distribute:" + period
}
