package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/internal/cache"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/database"
)

// listbench 对比列表页无缓存与 Redis 读穿缓存的延迟
// 环境变量：N 每张表行数，REQ 请求次数，REDIS_ADDR 为空时使用进程内 miniredis
func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	N := envInt("N", 2000)
	REQ := envInt("REQ", 2000)

	mustDo(db.Exec("DELETE FROM table1").Error)
	mustDo(db.Exec("DELETE FROM table2").Error)
	rows1 := make([]model.Table1, N)
	rows2 := make([]model.Table2, N)
	for i := 0; i < N; i++ {
		rows1[i] = model.Table1{Title: fmt.Sprintf("title %d", i), Body: "lorem ipsum dolor sit amet"}
		rows2[i] = model.Table2{Title: fmt.Sprintf("title2 %d", i), Body: "lorem ipsum", Image: fmt.Sprintf("%s/%d.png", model.ImageUploadDir, i)}
	}
	mustDo(db.CreateInBatches(&rows1, 500).Error)
	mustDo(db.CreateInBatches(&rows2, 500).Error)
	fmt.Printf("Seeded %d rows per table\n", N)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		redisAddr = mr.Addr()
		fmt.Println("Using in-process miniredis")
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	mustDo(client.Ping(ctx).Err())

	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	lc := cache.NewListingCache(client, time.Minute)

	noCache := run(ctx, service.NewListingService(t1, t2, nil), REQ)

	mustDo(client.FlushAll(ctx).Err())
	lc.ResetCounters()
	cached := run(ctx, service.NewListingService(t1, t2, lc), REQ)
	hits, misses := lc.Counters()

	fmt.Printf("\nListing latency (%d req, %d rows per table)\n", REQ, N)
	fmt.Printf("%-14s avg=%v p95=%v p99=%v\n", "No cache", avg(noCache), pct(noCache, 0.95), pct(noCache, 0.99))
	fmt.Printf("%-14s avg=%v p95=%v p99=%v hits=%d misses=%d\n", "Redis cache", avg(cached), pct(cached, 0.95), pct(cached, 0.99), hits, misses)
}

func run(ctx context.Context, svc service.ListingService, n int) []time.Duration {
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if _, err := svc.Index(ctx); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	return out
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
