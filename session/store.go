package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport or protocol failure. The
// store never retries; unavailability propagates to the coordinator as an
// internal failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrRotateConflict is returned by [Store.ReplaceRefreshToken] when the
// stored record changed between read and write. The losing racer of two
// concurrent rotations observes this instead of silently overwriting.
var ErrRotateConflict = errors.New("refresh rotation conflict")

// ErrRotateSessionGone is returned when the rotation target no longer exists.
var ErrRotateSessionGone = errors.New("rotation target session gone")

const (
	rotateStatusNotFound int64 = 0
	rotateStatusConflict int64 = -1
	rotateStatusRotated  int64 = 1
)

// deleteSessionScript removes the record, the (user, device) pointer, and the
// user-set membership in one atomic unit. SREM runs unconditionally so a
// dangling set entry is cleared even when the record already expired.
const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[3], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
  redis.call("DEL", KEYS[2])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// rotateRefreshScript is a compare-and-swap on the whole stored blob. On
// match it rewrites all three key families with a fresh TTL, giving rotation
// the same expiry semantics as a fresh save.
const rotateRefreshScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[4])
redis.call("SET", KEYS[2], ARGV[3], "PX", ARGV[4])
redis.call("SADD", KEYS[3], ARGV[3])
return 1
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// Store is a Redis-backed session store maintaining the session record plus
// two secondary indexes, all bound to a single uniform TTL per write.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":session:" + sessionID
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":user-sessions:" + userID
}

func (s *Store) deviceKey(userID, deviceID string) string {
	return s.prefix + ":user-device:" + userID + ":" + deviceID
}

// Save persists a [Session] with the given TTL. The record, the (user,
// device) pointer, and the user-set membership are written in one MULTI/EXEC
// so they cannot partially land; record and pointer carry the same TTL so
// they expire together.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	sessionKey := s.key(sess.SessionID)
	userKey := s.userKey(sess.UserID)
	deviceKey := s.deviceKey(sess.UserID, sess.DeviceID)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey, data, ttl)
		pipe.SAdd(ctx, userKey, sess.SessionID)
		pipe.Set(ctx, deviceKey, sess.SessionID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves a session by ID. Absence is reported as redis.Nil.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(data)
}

// FindByUserAndDevice resolves the (user, device) pointer to a session ID and
// loads the record. Either hop missing yields redis.Nil: a dangling pointer
// whose record expired is treated as "not found", never as another session.
func (s *Store) FindByUserAndDevice(ctx context.Context, userID, deviceID string) (*Session, error) {
	sessionID, err := s.redis.Get(ctx, s.deviceKey(userID, deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.Get(ctx, sessionID)
}

// Delete removes a session and both of its index entries. Deleting an absent
// or already-deleted session is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return err
	}

	return s.deleteSessionAndIndex(ctx, sess.UserID, sess.DeviceID, sessionID)
}

// ActiveSessionIDs returns the tracked session IDs for a user. The set may
// contain stale IDs whose record already expired; callers must tolerate a
// miss when resolving each.
func (s *Store) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ids, nil
}

// DeleteAllForUser removes every tracked session for a user, then the set
// key itself.
//
// ATOMICITY NOTE: the member snapshot is taken once with SMembers; a session
// created concurrently with this call is not guaranteed to be captured. The
// stray record expires on its own TTL or is caught by the next invocation.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)

	sessionIDs, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	for _, sessionID := range sessionIDs {
		if err := s.Delete(ctx, sessionID); err != nil {
			return err
		}
	}

	if err := s.redis.Del(ctx, userKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ReplaceRefreshToken swaps the session's refresh credential using a Lua
// compare-and-swap over the stored blob, then rewrites the indexes with
// fresh-save TTL semantics. A concurrent writer that changed the record
// first makes this call fail with [ErrRotateConflict] instead of losing
// the competing update.
func (s *Store) ReplaceRefreshToken(
	ctx context.Context,
	sess *Session,
	newRefreshToken string,
	ttl time.Duration,
) (*Session, error) {
	oldBlob, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	updated := *sess
	updated.RefreshToken = newRefreshToken
	newBlob, err := Encode(&updated)
	if err != nil {
		return nil, err
	}

	keys := []string{
		s.key(sess.SessionID),
		s.deviceKey(sess.UserID, sess.DeviceID),
		s.userKey(sess.UserID),
	}
	result, err := rotateRefreshLua.Run(
		ctx,
		s.redis,
		keys,
		oldBlob,
		newBlob,
		sess.SessionID,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusRotated:
		return &updated, nil
	case rotateStatusNotFound:
		return nil, errors.Join(redis.Nil, ErrRotateSessionGone)
	case rotateStatusConflict:
		return nil, ErrRotateConflict
	default:
		return nil, fmt.Errorf("%w: unknown rotate script status", ErrRedisUnavailable)
	}
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) deleteSessionAndIndex(ctx context.Context, userID, deviceID, sessionID string) error {
	keys := []string{
		s.key(sessionID),
		s.deviceKey(userID, deviceID),
		s.userKey(userID),
	}
	if _, err := deleteSessionLua.Run(ctx, s.redis, keys, sessionID).Result(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
