// Package lock bloqueo distribuido por plan sobre Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/pkg/config"
	"github.com/jhoicas/control-calidad/pkg/logger"
)

var _ planning.PlanLocker = (*RedisPlanLocker)(nil)

const (
	retryInterval = 100 * time.Millisecond
	maxRetries    = 30
)

// NewRedisClient abre la conexión a Redis y verifica con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Address, err)
	}
	return rdb, nil
}

// RedisPlanLocker serializa escrituras al libro de un plan entre instancias del servicio.
type RedisPlanLocker struct {
	locker   *redislock.Client
	ttl      time.Duration
	interval time.Duration
	retries  int
	log      *logger.Logger
}

// NewRedisPlanLocker construye el locker sobre un cliente Redis ya conectado.
func NewRedisPlanLocker(rdb redislock.RedisClient, ttl time.Duration, log *logger.Logger) *RedisPlanLocker {
	return &RedisPlanLocker{
		locker:   redislock.New(rdb),
		ttl:      ttl,
		interval: retryInterval,
		retries:  maxRetries,
		log:      log,
	}
}

// WithRetry cambia la espera entre intentos y el número de reintentos antes de rendirse.
func (l *RedisPlanLocker) WithRetry(interval time.Duration, retries int) *RedisPlanLocker {
	l.interval = interval
	l.retries = retries
	return l
}

// Lock espera el bloqueo del plan reintentando (por defecto hasta ~3s); si no lo obtiene devuelve domain.ErrLockNotObtained.
func (l *RedisPlanLocker) Lock(ctx context.Context, planID string) (func(), error) {
	key := Key(planID)
	lk, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.interval), l.retries),
	})
	// sin deadline propio redislock corta la espera al vencer el ttl
	if errors.Is(err, redislock.ErrNotObtained) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("redis: obtener %s: %w", key, err)
	}
	return func() {
		// contexto propio: la liberación debe ocurrir aunque el request se haya cancelado
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("lock", key).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}

// Key clave de Redis del bloqueo de un plan.
func Key(planID string) string {
	return "lock:plan:" + planID
}
