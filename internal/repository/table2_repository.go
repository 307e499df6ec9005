package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/ceb/internal/model"
)

// Table2Repository Table2 仓储接口
type Table2Repository interface {
	List(ctx context.Context) ([]model.Table2, error)
	Get(ctx context.Context, id uint) (*model.Table2, error)
	Create(ctx context.Context, rec *model.Table2) error
	Update(ctx context.Context, rec *model.Table2) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type table2Repository struct {
	db *gorm.DB
}

func NewTable2Repository(db *gorm.DB) Table2Repository { return &table2Repository{db: db} }

func (r *table2Repository) List(ctx context.Context) ([]model.Table2, error) {
	res := make([]model.Table2, 0)
	err := r.db.WithContext(ctx).Find(&res).Error
	return res, err
}

func (r *table2Repository) Get(ctx context.Context, id uint) (*model.Table2, error) {
	var rec model.Table2
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *table2Repository) Create(ctx context.Context, rec *model.Table2) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *table2Repository) Update(ctx context.Context, rec *model.Table2) error {
	res := r.db.WithContext(ctx).Model(&model.Table2{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{"title": rec.Title, "body": rec.Body, "image": rec.Image})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *table2Repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Table2{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *table2Repository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Table2{}).Count(&cnt).Error
	return cnt, err
}
