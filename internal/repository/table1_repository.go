package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/ceb/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Table1Repository Table1 仓储接口
type Table1Repository interface {
	// List 返回全部记录，不排序不分页
	List(ctx context.Context) ([]model.Table1, error)
	Get(ctx context.Context, id uint) (*model.Table1, error)
	Create(ctx context.Context, rec *model.Table1) error
	Update(ctx context.Context, rec *model.Table1) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type table1Repository struct {
	db *gorm.DB
}

func NewTable1Repository(db *gorm.DB) Table1Repository { return &table1Repository{db: db} }

func (r *table1Repository) List(ctx context.Context) ([]model.Table1, error) {
	res := make([]model.Table1, 0)
	err := r.db.WithContext(ctx).Find(&res).Error
	return res, err
}

func (r *table1Repository) Get(ctx context.Context, id uint) (*model.Table1, error) {
	var rec model.Table1
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *table1Repository) Create(ctx context.Context, rec *model.Table1) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *table1Repository) Update(ctx context.Context, rec *model.Table1) error {
	res := r.db.WithContext(ctx).Model(&model.Table1{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{"title": rec.Title, "body": rec.Body})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *table1Repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Table1{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *table1Repository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Table1{}).Count(&cnt).Error
	return cnt, err
}
