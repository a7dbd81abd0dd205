package repository

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const minPingTimeout = 500 * time.Millisecond

// Liveness reports whether the networked backend is believed reachable.
// The answer is a hint and may lag the backend's real health.
type Liveness interface {
	Live() bool
}

// HealthMonitor owns the liveness flag for one redis client. It learns from
// connection events through a redis hook and from periodic pings.
type HealthMonitor struct {
	live   atomic.Bool
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisHealthMonitor registers the monitor's hook on client. The flag starts false
// until a connection is established.
func NewRedisHealthMonitor(client redis.UniversalClient, logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &HealthMonitor{client: client, logger: logger}
	client.AddHook(healthHook{monitor: m})
	return m
}

func (m *HealthMonitor) Live() bool {
	return m.live.Load()
}

func (m *HealthMonitor) markUp() {
	if !m.live.Swap(true) {
		m.logger.Info("redis connection established")
	}
}

func (m *HealthMonitor) markDown(err error) {
	if m.live.Swap(false) {
		m.logger.Warn("redis connection lost, using in-memory store", zap.Error(err))
	}
}

// Ping checks the server once and records the outcome directly. Unlike
// request traffic, a ping that runs out of time counts as the backend being down.
func (m *HealthMonitor) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.markDown(err)
		return err
	}
	m.markUp()
	return nil
}

// Run pings every interval until ctx is done. A ping dials when the pool is
// empty, which is how a lost backend is noticed coming back.
func (m *HealthMonitor) Run(ctx context.Context, interval time.Duration) {
	timeout := interval
	if timeout < minPingTimeout {
		timeout = minPingTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			_ = m.Ping(pingCtx)
			cancel()
		}
	}
}

// isConnectionError separates transport failures from server replies and misses.
// Caller cancellations and deadlines say nothing about the backend and are ignored.
func isConnectionError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return false
	}
	return true
}

type healthHook struct {
	monitor *HealthMonitor
}

func (h healthHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.monitor.markDown(err)
			return nil, err
		}
		h.monitor.markUp()
		return conn, nil
	}
}

func (h healthHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if isConnectionError(err) {
			h.monitor.markDown(err)
		}
		return err
	}
}

func (h healthHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if isConnectionError(err) {
			h.monitor.markDown(err)
		}
		return err
	}
}
