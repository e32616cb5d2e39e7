package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
)

// releaseScript deletes the admission lock only when the caller still owns
// it, so a session that outlived its lock TTL cannot release a lock the
// next session already holds.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Store is the ephemeral side of admission control: the per-identity
// session lock, daily counters, cooldown markers, the served-question
// tracker and the active-session mirror all live here. Nothing in this
// package is a source of truth for completed results.
type Store struct {
	redis   adapter.RedisClient
	limiter adapter.RedisRateLimiter
	json    adapter.JSON
	clock   adapter.Clock

	// dayOffset shifts the UTC midnight used for daily rollover
	dayOffset time.Duration
}

// NewStore creates the redis-backed admission store
func NewStore(redisClient adapter.RedisClient, jsonProc adapter.JSON, clock adapter.Clock, dayOffset time.Duration) *Store {
	return &Store{
		redis:     redisClient,
		limiter:   redisClient.NewRateLimiter(),
		json:      jsonProc,
		clock:     clock,
		dayOffset: dayOffset,
	}
}

// DayKey returns the rollover bucket for t, shifted by the configured
// offset from UTC midnight.
func (s *Store) DayKey(t time.Time) string {
	return t.UTC().Add(-s.dayOffset).Format("2006-01-02")
}

// untilNextDay returns how long the current day bucket has left, used as
// the TTL for all per-day keys.
func (s *Store) untilNextDay(t time.Time) time.Duration {
	shifted := t.UTC().Add(-s.dayOffset)
	next := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return next.Sub(shifted)
}

func lockKey(identityKey string) string {
	return fmt.Sprintf("lock:identity:%s", identityKey)
}

// AcquireSessionLock takes the per-identity admission lock via SetNX. The
// lock value is the session id so release is owner-checked. Returns false
// when another session already holds the lock.
func (s *Store) AcquireSessionLock(ctx context.Context, identityKey, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := s.redis.SetNX(ctx, lockKey(identityKey), sessionID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return ok, nil
}

// ReleaseSessionLock releases the admission lock if sessionID still owns it
func (s *Store) ReleaseSessionLock(ctx context.Context, identityKey, sessionID string) error {
	if err := s.redis.Eval(ctx, releaseScript, []string{lockKey(identityKey)}, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}

// LockHolder returns the session id currently holding the identity's
// admission lock, empty when unlocked.
func (s *Store) LockHolder(ctx context.Context, identityKey string) (string, error) {
	holder, err := s.redis.Get(ctx, lockKey(identityKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session lock: %w", err)
	}
	return holder, nil
}

func dailyKey(identityKey, day string) string {
	return fmt.Sprintf("daily:%s:%s", identityKey, day)
}

// IncrDailyCount bumps the identity's session count for the current day
// and returns the new value. The key expires at the next day rollover.
func (s *Store) IncrDailyCount(ctx context.Context, identityKey string) (int64, error) {
	now := s.clock.Now()
	key := dailyKey(identityKey, s.DayKey(now))
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment daily count: %w", err)
	}
	if n == 1 {
		if err := s.redis.Expire(ctx, key, s.untilNextDay(now)).Err(); err != nil {
			return n, fmt.Errorf("failed to set daily count ttl: %w", err)
		}
	}
	return n, nil
}

// DecrDailyCount compensates a rejected admission so the slot is not lost
func (s *Store) DecrDailyCount(ctx context.Context, identityKey string) error {
	key := dailyKey(identityKey, s.DayKey(s.clock.Now()))
	if err := s.redis.Decr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to decrement daily count: %w", err)
	}
	return nil
}

// DailyCount returns the identity's session count for the current day
func (s *Store) DailyCount(ctx context.Context, identityKey string) (int64, error) {
	n, err := s.redis.Get(ctx, dailyKey(identityKey, s.DayKey(s.clock.Now()))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily count: %w", err)
	}
	return n, nil
}

func cooldownKey(identityKey string) string {
	return fmt.Sprintf("cooldown:%s", identityKey)
}

// SetCooldown arms the cooldown marker. One marker per identity: starting
// a session in another category does not dodge it.
func (s *Store) SetCooldown(ctx context.Context, identityKey string, d time.Duration) error {
	if err := s.redis.Set(ctx, cooldownKey(identityKey), "1", d).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}

// OnCooldown reports whether the marker is armed and how long remains
func (s *Store) OnCooldown(ctx context.Context, identityKey string) (bool, time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, cooldownKey(identityKey)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read cooldown ttl: %w", err)
	}
	// PTTL returns a negative duration when the key is absent or has no
	// expiry.
	if ttl <= 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

func servedKey(identityKey string, category domain.Category, day string) string {
	return fmt.Sprintf("served:%s:%s:%s", identityKey, category, day)
}

// MarkQuestionsServed records question ids dealt to the identity today so
// later sessions in the same category avoid repeats.
func (s *Store) MarkQuestionsServed(ctx context.Context, identityKey string, category domain.Category, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := s.clock.Now()
	key := servedKey(identityKey, category, s.DayKey(now))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.redis.SAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("failed to record served questions: %w", err)
	}
	if err := s.redis.Expire(ctx, key, s.untilNextDay(now)).Err(); err != nil {
		return fmt.Errorf("failed to set served questions ttl: %w", err)
	}
	return nil
}

// ServedQuestions returns the ids already dealt to the identity today
func (s *Store) ServedQuestions(ctx context.Context, identityKey string, category domain.Category) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, servedKey(identityKey, category, s.DayKey(s.clock.Now()))).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read served questions: %w", err)
	}
	return ids, nil
}

// MergeIdentity folds a guest's per-day admission state into a wallet's
// after an eligibility transfer: the daily counter is added onto the
// wallet's (the wallet cap applies to the sum) and served-question sets
// are unioned per category so the wallet does not see repeats the guest
// already played. Guest keys are dropped; everything stays on the current
// day's TTL schedule.
func (s *Store) MergeIdentity(ctx context.Context, guestKey, walletKey string, categories []domain.Category) error {
	now := s.clock.Now()
	day := s.DayKey(now)
	ttl := s.untilNextDay(now)

	guestDaily := dailyKey(guestKey, day)
	n, err := s.redis.Get(ctx, guestDaily).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read guest daily count: %w", err)
	}
	if n > 0 {
		walletDaily := dailyKey(walletKey, day)
		if err := s.redis.IncrBy(ctx, walletDaily, n).Err(); err != nil {
			return fmt.Errorf("failed to merge daily count: %w", err)
		}
		if err := s.redis.Expire(ctx, walletDaily, ttl).Err(); err != nil {
			return fmt.Errorf("failed to set merged daily count ttl: %w", err)
		}
		if err := s.redis.Del(ctx, guestDaily).Err(); err != nil {
			return fmt.Errorf("failed to drop guest daily count: %w", err)
		}
	}

	for _, category := range categories {
		guestServed := servedKey(guestKey, category, day)
		walletServed := servedKey(walletKey, category, day)
		if err := s.redis.SUnionStore(ctx, walletServed, walletServed, guestServed).Err(); err != nil {
			return fmt.Errorf("failed to merge served questions: %w", err)
		}
		if err := s.redis.Expire(ctx, walletServed, ttl).Err(); err != nil {
			return fmt.Errorf("failed to set merged served questions ttl: %w", err)
		}
		if err := s.redis.Del(ctx, guestServed).Err(); err != nil {
			return fmt.Errorf("failed to drop guest served questions: %w", err)
		}
	}

	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

const deadlineIndexKey = "sessions:deadlines"

// MirrorSession writes the in-flight session state keyed by session id.
// The mirror serves reads and answer validation until the first answer
// makes the relational row authoritative.
func (s *Store) MirrorSession(ctx context.Context, sessionID string, state interface{}, ttl time.Duration) error {
	blob, err := s.json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session mirror: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), blob, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session mirror: %w", err)
	}
	return nil
}

// ActiveSession loads the mirrored state into out; found=false when the
// mirror is absent or already expired.
func (s *Store) ActiveSession(ctx context.Context, sessionID string, out interface{}) (bool, error) {
	blob, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session mirror: %w", err)
	}
	if err := s.json.Unmarshal(blob, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal session mirror: %w", err)
	}
	return true, nil
}

// DropSession removes the mirror once the session reaches a terminal state
func (s *Store) DropSession(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to drop session mirror: %w", err)
	}
	return nil
}

// IndexDeadline registers the session's hard deadline for the abandon
// sweeper. Scores are unix milliseconds.
func (s *Store) IndexDeadline(ctx context.Context, sessionID string, deadline time.Time) error {
	err := s.redis.ZAdd(ctx, deadlineIndexKey, redis.Z{
		Score:  float64(deadline.UnixMilli()),
		Member: sessionID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index session deadline: %w", err)
	}
	return nil
}

// DueSessions returns session ids whose deadline passed before now
func (s *Store) DueSessions(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ids, err := s.redis.ZRangeByScore(ctx, deadlineIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list due sessions: %w", err)
	}
	return ids, nil
}

// ClearDeadline drops a session from the deadline index
func (s *Store) ClearDeadline(ctx context.Context, sessionID string) error {
	if err := s.redis.ZRem(ctx, deadlineIndexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to clear session deadline: %w", err)
	}
	return nil
}

// Throttle applies the per-identity request rate limit, returning
// domain.ErrThrottled when the budget is spent.
func (s *Store) Throttle(ctx context.Context, identityKey string, perMinute int) error {
	res, err := s.limiter.Allow(ctx, fmt.Sprintf("throttle:%s", identityKey), redis_rate.PerMinute(perMinute))
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if res.Allowed == 0 {
		return domain.ErrThrottled
	}
	return nil
}
