package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bracketbuddy/internal/store"
	"bracketbuddy/internal/store/model"
)

type SqliteStore struct {
	db *gorm.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	if err := db.AutoMigrate(&model.RenderModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Renders() store.RenderRepository {
	return NewRenderRepo(s.db)
}

func (s *SqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ store.Store = (*SqliteStore)(nil)

type renderRepo struct {
	db *gorm.DB
}

func NewRenderRepo(db *gorm.DB) *renderRepo {
	return &renderRepo{db: db}
}

func (r *renderRepo) Insert(ctx context.Context, rec *model.RenderModel) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *renderRepo) ListRecent(ctx context.Context, limit int) ([]model.RenderModel, error) {
	return r.list(r.db.WithContext(ctx), limit)
}

func (r *renderRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.RenderModel, error) {
	return r.list(r.db.WithContext(ctx).Where("session_id = ?", sessionID), limit)
}

func (r *renderRepo) list(q *gorm.DB, limit int) ([]model.RenderModel, error) {
	var rows []model.RenderModel
	q = q.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
