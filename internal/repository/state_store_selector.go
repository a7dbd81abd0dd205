package repository

import (
	"context"
	"time"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// SelectingStateStore sends each call, whole, to the networked store while the
// liveness source reports it live and to the fallback otherwise. Nothing is copied between
// the two when the flag flips, so keys written on one side read as absent on the other.
type SelectingStateStore struct {
	primary  StateStore
	fallback StateStore
	liveness Liveness
}

func NewSelectingStateStore(primary, fallback StateStore, liveness Liveness) *SelectingStateStore {
	return &SelectingStateStore{primary: primary, fallback: fallback, liveness: liveness}
}

func (s *SelectingStateStore) pick() StateStore {
	if s.liveness.Live() {
		return s.primary
	}
	return s.fallback
}

// Backend names the store the next call would use.
func (s *SelectingStateStore) Backend() string {
	if s.liveness.Live() {
		return BackendRedis
	}
	return BackendMemory
}

func (s *SelectingStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.pick().Set(ctx, key, value, ttl)
}

func (s *SelectingStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.pick().Get(ctx, key)
}

func (s *SelectingStateStore) Delete(ctx context.Context, key string) error {
	return s.pick().Delete(ctx, key)
}

func (s *SelectingStateStore) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	return s.pick().CompareAndDelete(ctx, key, expected)
}
