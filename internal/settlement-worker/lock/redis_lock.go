package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implementa settlement.Locker com SET NX + TTL por draw.
// O TTL cobre o caso de crash com o lock em mãos: a re-execução consegue
// adquirir de novo depois que ele expira.
type RedisLocker struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{R: r, TTL: ttl}
}

func key(drawID string) string { return "settlement:lock:" + drawID }

// Acquire tenta obter o lock do draw. O token único garante que o release
// só apaga o lock desta execução, nunca o de outra que assumiu após expirar.
func (l *RedisLocker) Acquire(ctx context.Context, drawID string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, key(drawID), token, l.TTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// DEL condicionado ao token via script: compare-and-delete atômico.
		const script = `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			end
			return 0
		`
		_ = l.R.Eval(ctx, script, []string{key(drawID)}, token).Err()
	}
	return release, true, nil
}
