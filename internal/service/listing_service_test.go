package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/ceb/internal/cache"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/testutil"
)

func TestListingService_EmptyStore(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewListingService(repository.NewTable1Repository(db), repository.NewTable2Repository(db), nil)

	l, err := svc.Index(context.Background())
	require.NoError(t, err)
	ctx := l.Context()
	assert.Len(t, ctx, 2)
	assert.Empty(t, ctx[model.ContextKeyTable1])
	assert.NotNil(t, ctx[model.ContextKeyTable1])
	assert.Empty(t, ctx[model.ContextKeyTable2])
	assert.NotNil(t, ctx[model.ContextKeyTable2])
}

func TestListingService_ReturnsEveryRecord(t *testing.T) {
	db := testutil.NewDB(t)
	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	ctx := context.Background()

	require.NoError(t, t1.Create(ctx, &model.Table1{Title: "A", Body: "x"}))
	require.NoError(t, t2.Create(ctx, &model.Table2{Title: "B", Body: "y", Image: "img.png"}))

	l, err := NewListingService(t1, t2, nil).Index(ctx)
	require.NoError(t, err)
	require.Len(t, l.Table1, 1)
	require.Len(t, l.Table2, 1)
	assert.Equal(t, "A", l.Table1[0].Title)
	assert.Equal(t, "B", l.Table2[0].Title)
}

func TestListingService_CacheReadThroughAndInvalidate(t *testing.T) {
	db := testutil.NewDB(t)
	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	lc := cache.NewListingCache(client, time.Minute)
	svc := NewListingService(t1, t2, lc)

	require.NoError(t, t1.Create(ctx, &model.Table1{Title: "A", Body: "x"}))
	first, err := svc.Index(ctx)
	require.NoError(t, err)
	require.Len(t, first.Table1, 1)
	assert.True(t, mr.Exists(cache.ListingKey))

	// 绕过服务直接写库，缓存仍返回旧快照
	require.NoError(t, t1.Create(ctx, &model.Table1{Title: "C", Body: "z"}))
	stale, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, stale.Table1, 1)

	svc.Invalidate(ctx)
	fresh, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh.Table1, 2)

	hits, _ := lc.Counters()
	assert.EqualValues(t, 1, hits)
}

// writeAfterListRepo runs afterList once, after the rows were read, to model a
// write that lands while Index is still loading.
type writeAfterListRepo struct {
	repository.Table1Repository
	afterList func()
}

func (r *writeAfterListRepo) List(ctx context.Context) ([]model.Table1, error) {
	rows, err := r.Table1Repository.List(ctx)
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return rows, err
}

func TestListingService_WriteDuringLoadIsNotCached(t *testing.T) {
	db := testutil.NewDB(t)
	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	ctx := context.Background()
	require.NoError(t, t1.Create(ctx, &model.Table1{Title: "A", Body: "x"}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &writeAfterListRepo{Table1Repository: t1}
	svc := NewListingService(repo, t2, cache.NewListingCache(client, time.Minute))
	repo.afterList = func() {
		require.NoError(t, t1.Create(ctx, &model.Table1{Title: "C", Body: "z"}))
		svc.Invalidate(ctx)
	}

	first, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Table1, 1)
	assert.False(t, mr.Exists(cache.ListingKey), "snapshot read before the write must not be cached")

	second, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, second.Table1, 2)
	assert.True(t, mr.Exists(cache.ListingKey))
}

func TestListingService_CacheOutageFallsBackToDB(t *testing.T) {
	db := testutil.NewDB(t)
	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	ctx := context.Background()
	require.NoError(t, t1.Create(ctx, &model.Table1{Title: "A", Body: "x"}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l, err := NewListingService(t1, t2, cache.NewListingCache(client, time.Minute)).Index(ctx)
	require.NoError(t, err)
	assert.Len(t, l.Table1, 1)
}

type failingTable1Repo struct{ repository.Table1Repository }

func (failingTable1Repo) List(context.Context) ([]model.Table1, error) {
	return nil, errors.New("db down")
}

func TestListingService_PropagatesStorageError(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewListingService(failingTable1Repo{}, repository.NewTable2Repository(db), nil)
	_, err := svc.Index(context.Background())
	assert.EqualError(t, err, "db down")
}
