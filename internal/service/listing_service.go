package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/ceb/internal/cache"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/pkg/logger"
)

// ListingService 列表页服务
type ListingService interface {
	// Index 读取两类记录的全部数据（不过滤、不分页、存储默认顺序）
	Index(ctx context.Context) (*model.Listing, error)
	// Invalidate 写操作后清理缓存
	Invalidate(ctx context.Context)
}

type listingService struct {
	table1Repo repository.Table1Repository
	table2Repo repository.Table2Repository
	cache      *cache.ListingCache
}

// NewListingService cache 可为 nil，此时每次都直接读库
func NewListingService(t1 repository.Table1Repository, t2 repository.Table2Repository, c *cache.ListingCache) ListingService {
	return &listingService{table1Repo: t1, table2Repo: t2, cache: c}
}

func (s *listingService) Index(ctx context.Context) (*model.Listing, error) {
	if cached, err := s.cache.Get(ctx); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		// 缓存故障降级为读库
		logger.Warn("listing cache read failed", zap.Error(err))
	}

	// 先取代数再读库，读库期间若有写操作则放弃回填
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		logger.Warn("listing cache generation read failed", zap.Error(genErr))
	}

	t2, err := s.table2Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	t1, err := s.table1Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	l := &model.Listing{Table2: t2, Table1: t1}

	if genErr == nil {
		if err := s.cache.Set(ctx, l, gen); errors.Is(err, cache.ErrStale) {
			logger.Debug("listing changed while loading, skip cache fill")
		} else if err != nil {
			logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return l, nil
}

func (s *listingService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("listing cache invalidate failed", zap.Error(err))
	}
}
