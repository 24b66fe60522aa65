package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quiz-platform/internal/models"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCache(t *testing.T, ttl time.Duration) (*Leaderboards, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLeaderboards(client, ttl), mr
}

type countingLoader struct {
	calls   atomic.Int32
	entries []models.LeaderboardEntry
}

func (l *countingLoader) load(context.Context) ([]models.LeaderboardEntry, error) {
	l.calls.Add(1)
	return l.entries, nil
}

func TestLeaderboardCachesAfterFirstLoad(t *testing.T) {
	lb, mr := newCache(t, time.Minute)
	loader := &countingLoader{entries: []models.LeaderboardEntry{{Name: "Ada", Score: 10, Rank: 1}}}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entries, err := lb.GetOrLoad(ctx, "quiz-1", loader.load)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "Ada" {
			t.Fatalf("Unexpected entries %+v", entries)
		}
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Expected loader called once, got %d", got)
	}
	if !mr.Exists("leaderboard:quiz-1") {
		t.Error("Expected key leaderboard:quiz-1 in redis")
	}
	if ttl := mr.TTL("leaderboard:quiz-1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Errorf("Expected ttl within jitter window, got %v", ttl)
	}
}

func TestLeaderboardInvalidateForcesReload(t *testing.T) {
	lb, _ := newCache(t, time.Minute)
	loader := &countingLoader{}
	ctx := context.Background()

	if _, err := lb.GetOrLoad(ctx, "quiz-1", loader.load); err != nil {
		t.Fatalf("get: %v", err)
	}
	lb.Invalidate(ctx, "quiz-1")
	if _, err := lb.GetOrLoad(ctx, "quiz-1", loader.load); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 2 loads after invalidation, got %d", got)
	}
}

func TestLeaderboardEmptyListIsCached(t *testing.T) {
	lb, _ := newCache(t, time.Minute)
	loader := &countingLoader{}
	ctx := context.Background()

	first, _ := lb.GetOrLoad(ctx, "quiz-1", loader.load)
	second, _ := lb.GetOrLoad(ctx, "quiz-1", loader.load)
	if first != nil || len(second) != 0 {
		t.Errorf("Expected empty leaderboards, got %v and %v", first, second)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Expected empty result to be cached, loader calls=%d", got)
	}
}

func TestLeaderboardLoadErrorIsNotCached(t *testing.T) {
	lb, mr := newCache(t, time.Minute)
	boom := errors.New("store down")

	_, err := lb.GetOrLoad(context.Background(), "quiz-1", func(context.Context) ([]models.LeaderboardEntry, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected load error, got %v", err)
	}
	if mr.Exists("leaderboard:quiz-1") {
		t.Error("Expected nothing cached after a failed load")
	}
}

func TestLeaderboardCoalescesConcurrentMisses(t *testing.T) {
	lb, _ := newCache(t, time.Minute)
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) ([]models.LeaderboardEntry, error) {
		calls.Add(1)
		<-release
		return []models.LeaderboardEntry{{Rank: 1}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = lb.GetOrLoad(context.Background(), "quiz-1", load)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// goroutines that arrived after the flight finished hit the cache instead
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected a single load, got %d", got)
	}
}

func TestPassthroughAlwaysLoads(t *testing.T) {
	loader := &countingLoader{}
	var p Passthrough
	_, _ = p.GetOrLoad(context.Background(), "q", loader.load)
	_, _ = p.GetOrLoad(context.Background(), "q", loader.load)
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 2 loads, got %d", got)
	}
}

func TestLeaderboardInvalidateDuringLoadIsNotCached(t *testing.T) {
	lb, mr := newCache(t, time.Minute)
	ctx := context.Background()
	var calls atomic.Int32
	load := func(ctx context.Context) ([]models.LeaderboardEntry, error) {
		n := calls.Add(1)
		if n == 1 {
			// a write lands after the read but before the result is stored
			lb.Invalidate(ctx, "quiz-1")
			return []models.LeaderboardEntry{}, nil
		}
		return []models.LeaderboardEntry{{Name: "Ada", Score: 9, Rank: 1}}, nil
	}

	if _, err := lb.GetOrLoad(ctx, "quiz-1", load); err != nil {
		t.Fatalf("get: %v", err)
	}
	if mr.Exists("leaderboard:quiz-1") {
		t.Fatal("Expected a load overtaken by invalidation not to be cached")
	}
	if gen, _ := mr.Get("leaderboard:quiz-1:gen"); gen != "1" {
		t.Errorf("Expected generation 1, got %q", gen)
	}

	entries, err := lb.GetOrLoad(ctx, "quiz-1", load)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Ada" {
		t.Fatalf("Expected the fresh board, got %+v", entries)
	}
	if !mr.Exists("leaderboard:quiz-1") {
		t.Error("Expected the fresh board to be cached")
	}
}

func TestLeaderboardSharedLoadSurvivesCanceledCaller(t *testing.T) {
	lb, _ := newCache(t, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr atomic.Value
	load := func(ctx context.Context) ([]models.LeaderboardEntry, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			loadErr.Store(err)
			return nil, err
		}
		return []models.LeaderboardEntry{{Name: "Ada", Rank: 1}}, nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := lb.GetOrLoad(firstCtx, "quiz-1", load)
		firstErr <- err
	}()
	<-started

	type result struct {
		entries []models.LeaderboardEntry
		err     error
	}
	second := make(chan result, 1)
	go func() {
		entries, err := lb.GetOrLoad(context.Background(), "quiz-1", load)
		second <- result{entries, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the canceled caller to return context.Canceled, got %v", err)
	}
	close(release)

	res := <-second
	if res.err != nil {
		t.Fatalf("Expected the waiting caller to succeed, got %v", res.err)
	}
	if len(res.entries) != 1 || res.entries[0].Name != "Ada" {
		t.Errorf("Unexpected entries %+v", res.entries)
	}
	if err := loadErr.Load(); err != nil {
		t.Errorf("Expected the shared load context to stay live, got %v", err)
	}
}
