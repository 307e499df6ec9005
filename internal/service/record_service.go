package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/pkg/logger"
)

// ErrInvalidInput 字段校验失败
var ErrInvalidInput = errors.New("invalid input")

// RecordInput 两类记录共有的可编辑字段
type RecordInput struct {
	Title string `validate:"required,max=150"`
	Body  string `validate:"required"`
}

// ImageUpload 上传的图片文件
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// RecordService 记录管理（后台增删改查）
type RecordService interface {
	GetTable1(ctx context.Context, id uint) (*model.Table1, error)
	CreateTable1(ctx context.Context, in RecordInput) (*model.Table1, error)
	UpdateTable1(ctx context.Context, id uint, in RecordInput) (*model.Table1, error)
	DeleteTable1(ctx context.Context, id uint) error

	GetTable2(ctx context.Context, id uint) (*model.Table2, error)
	// CreateTable2 image 必填
	CreateTable2(ctx context.Context, in RecordInput, image *ImageUpload) (*model.Table2, error)
	// UpdateTable2 image 为 nil 时保留原图
	UpdateTable2(ctx context.Context, id uint, in RecordInput, image *ImageUpload) (*model.Table2, error)
	DeleteTable2(ctx context.Context, id uint) error
}

type recordService struct {
	table1Repo repository.Table1Repository
	table2Repo repository.Table2Repository
	media      MediaStore
	listing    ListingService
	validate   *validator.Validate
}

func NewRecordService(t1 repository.Table1Repository, t2 repository.Table2Repository, media MediaStore, listing ListingService) RecordService {
	return &recordService{
		table1Repo: t1,
		table2Repo: t2,
		media:      media,
		listing:    listing,
		validate:   validator.New(),
	}
}

func (s *recordService) check(in RecordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func (s *recordService) GetTable1(ctx context.Context, id uint) (*model.Table1, error) {
	return s.table1Repo.Get(ctx, id)
}

func (s *recordService) CreateTable1(ctx context.Context, in RecordInput) (*model.Table1, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	rec := &model.Table1{Title: in.Title, Body: in.Body}
	if err := s.table1Repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.listing.Invalidate(ctx)
	return rec, nil
}

func (s *recordService) UpdateTable1(ctx context.Context, id uint, in RecordInput) (*model.Table1, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.table1Repo.Update(ctx, &model.Table1{ID: id, Title: in.Title, Body: in.Body}); err != nil {
		return nil, err
	}
	s.listing.Invalidate(ctx)
	return s.table1Repo.Get(ctx, id)
}

func (s *recordService) DeleteTable1(ctx context.Context, id uint) error {
	if err := s.table1Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.listing.Invalidate(ctx)
	return nil
}

func (s *recordService) GetTable2(ctx context.Context, id uint) (*model.Table2, error) {
	return s.table2Repo.Get(ctx, id)
}

func (s *recordService) CreateTable2(ctx context.Context, in RecordInput, image *ImageUpload) (*model.Table2, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: Image is required", ErrInvalidInput)
	}
	rel, err := s.media.Save(image.Filename, image.Reader)
	if err != nil {
		return nil, err
	}
	rec := &model.Table2{Title: in.Title, Body: in.Body, Image: rel}
	if err := s.table2Repo.Create(ctx, rec); err != nil {
		s.removeImage(rel)
		return nil, err
	}
	s.listing.Invalidate(ctx)
	return rec, nil
}

func (s *recordService) UpdateTable2(ctx context.Context, id uint, in RecordInput, image *ImageUpload) (*model.Table2, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	cur, err := s.table2Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := &model.Table2{ID: id, Title: in.Title, Body: in.Body, Image: cur.Image}
	if image != nil {
		rel, err := s.media.Save(image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
		next.Image = rel
	}
	if err := s.table2Repo.Update(ctx, next); err != nil {
		if next.Image != cur.Image {
			s.removeImage(next.Image)
		}
		return nil, err
	}
	if next.Image != cur.Image {
		s.removeImage(cur.Image)
	}
	s.listing.Invalidate(ctx)
	return s.table2Repo.Get(ctx, id)
}

func (s *recordService) DeleteTable2(ctx context.Context, id uint) error {
	cur, err := s.table2Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.table2Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(cur.Image)
	s.listing.Invalidate(ctx)
	return nil
}

func (s *recordService) removeImage(rel string) {
	if err := s.media.Remove(rel); err != nil {
		logger.Warn("remove image failed", zap.String("image", rel), zap.Error(err))
	}
}
