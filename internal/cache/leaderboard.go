package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"quiz-platform/internal/metrics"
	"quiz-platform/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LoadFunc computes a quiz's ranked entries from the store.
type LoadFunc func(ctx context.Context) ([]models.LeaderboardEntry, error)

// DefaultLoadTimeout bounds a shared load when LoadTimeout is unset.
const DefaultLoadTimeout = 10 * time.Second

var errStaleLoad = errors.New("leaderboard changed during load")

// Leaderboards caches ranked entries as JSON under leaderboard:{quizID}.
// Concurrent misses for the same quiz share one load. Invalidate bumps
// leaderboard:{quizID}:gen, and a load only writes back when the
// generation it started from is still current.
type Leaderboards struct {
	client      *redis.Client
	ttl         time.Duration
	LoadTimeout time.Duration
	sf          singleflight.Group
}

func NewLeaderboards(client *redis.Client, ttl time.Duration) *Leaderboards {
	return &Leaderboards{client: client, ttl: ttl, LoadTimeout: DefaultLoadTimeout}
}

func (l *Leaderboards) GetOrLoad(ctx context.Context, quizID string, load LoadFunc) ([]models.LeaderboardEntry, error) {
	if entries, ok := l.get(ctx, quizID); ok {
		metrics.LeaderboardCache.WithLabelValues(metrics.CacheHit).Inc()
		return entries, nil
	}
	metrics.LeaderboardCache.WithLabelValues(metrics.CacheMiss).Inc()

	gen, err := l.generation(ctx, quizID)
	if err != nil {
		log.Printf("Warning: leaderboard generation read %s: %v", quizID, err)
		return load(ctx)
	}

	// The flight outlives any single caller, so it runs on a detached context.
	flight := quizID + "@" + strconv.FormatInt(gen, 10)
	ch := l.sf.DoChan(flight, func() (interface{}, error) {
		loadCtx, cancel := l.loadContext(ctx)
		defer cancel()
		if entries, ok := l.get(loadCtx, quizID); ok {
			return entries, nil
		}
		entries, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		l.setIfCurrent(loadCtx, quizID, gen, entries)
		return entries, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.LeaderboardEntry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached board and advances its generation so that
// loads already in flight do not write their result back.
func (l *Leaderboards) Invalidate(ctx context.Context, quizID string) {
	ctx = context.WithoutCancel(ctx)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(quizID))
		pipe.Del(ctx, key(quizID))
		return nil
	})
	if err != nil {
		log.Printf("Warning: failed to invalidate leaderboard %s: %v", quizID, err)
	}
}

func (l *Leaderboards) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := l.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (l *Leaderboards) generation(ctx context.Context, quizID string) (int64, error) {
	gen, err := l.client.Get(ctx, genKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (l *Leaderboards) get(ctx context.Context, quizID string) ([]models.LeaderboardEntry, bool) {
	raw, err := l.client.Get(ctx, key(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Warning: leaderboard cache read %s: %v", quizID, err)
		}
		return nil, false
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("Warning: corrupt leaderboard cache entry %s: %v", quizID, err)
		return nil, false
	}
	return entries, true
}

func (l *Leaderboards) setIfCurrent(ctx context.Context, quizID string, gen int64, entries []models.LeaderboardEntry) {
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		log.Printf("Warning: encode leaderboard %s: %v", quizID, err)
		return
	}
	err = l.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(quizID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(quizID), raw, l.ttlWithJitter())
			return nil
		})
		return err
	}, genKey(quizID))
	switch {
	case err == nil, errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
	default:
		log.Printf("Warning: leaderboard cache write %s: %v", quizID, err)
	}
}

func (l *Leaderboards) ttlWithJitter() time.Duration {
	if l.ttl <= 0 {
		return 0
	}
	jitterMax := int64(l.ttl) / 10
	return l.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

func key(quizID string) string {
	return "leaderboard:" + quizID
}

func genKey(quizID string) string {
	return key(quizID) + ":gen"
}

// Passthrough is used when Redis is not configured: every lookup loads.
type Passthrough struct{}

func (Passthrough) GetOrLoad(ctx context.Context, _ string, load LoadFunc) ([]models.LeaderboardEntry, error) {
	return load(ctx)
}

func (Passthrough) Invalidate(context.Context, string) {}
