package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/freedl-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteOperationRepository implements domain.OperationRepository using SQLite
type SQLiteOperationRepository struct {
	db *gorm.DB
}

// NewSQLiteOperationRepository opens (creating if needed) the history database
func NewSQLiteOperationRepository(dbPath string) (*SQLiteOperationRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Operation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteOperationRepository{db: db}, nil
}

// Create creates a new operation record
func (r *SQLiteOperationRepository) Create(op *domain.Operation) error {
	return r.db.Create(op).Error
}

// Update updates an existing operation record
func (r *SQLiteOperationRepository) Update(op *domain.Operation) error {
	return r.db.Save(op).Error
}

// FindByID finds an operation by ID
func (r *SQLiteOperationRepository) FindByID(id string) (*domain.Operation, error) {
	var op domain.Operation
	err := r.db.First(&op, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return &op, nil
}

// FindAll finds operations matching filter, newest first
func (r *SQLiteOperationRepository) FindAll(filter domain.OperationFilter) ([]*domain.Operation, error) {
	var ops []*domain.Operation
	query := r.db.Model(&domain.Operation{})

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.URL != "" {
		query = query.Where("url = ?", filter.URL)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("created_at DESC").Find(&ops).Error
	return ops, err
}

// GetStats returns operation statistics
func (r *SQLiteOperationRepository) GetStats() (*domain.OperationStats, error) {
	stats := &domain.OperationStats{}

	if err := r.db.Model(&domain.Operation{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.OperationStatus
		Count  int64
	}{}
	if err := r.db.Model(&domain.Operation{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusRunning:
			stats.Running = sc.Count
		case domain.StatusSucceeded:
			stats.Succeeded = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	kindCounts := []struct {
		Kind  domain.OperationKind
		Count int64
	}{}
	if err := r.db.Model(&domain.Operation{}).
		Select("kind, count(*) as count").
		Group("kind").
		Scan(&kindCounts).Error; err != nil {
		return nil, err
	}
	for _, kc := range kindCounts {
		switch kc.Kind {
		case domain.KindResolve:
			stats.Resolves = kc.Count
		case domain.KindDownload:
			stats.Downloads = kc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteOperationRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
