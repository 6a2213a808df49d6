package repository

import (
	"context"
	"strings"

	"velum-go/internal/models"

	"gorm.io/gorm"
)

// LogFilter narrows a system log listing.
type LogFilter struct {
	Count  int
	Skip   int
	Level  string
	Search string
}

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Create(ctx context.Context, entry *models.SystemLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest first. Search matches message, action,
// resource and user name case-insensitively.
func (r *LogRepository) List(ctx context.Context, f LogFilter) ([]models.SystemLog, error) {
	q := r.db.WithContext(ctx).Model(&models.SystemLog{})
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(message) LIKE ? OR LOWER(action) LIKE ? OR LOWER(resource) LIKE ? OR LOWER(user_name) LIKE ?",
			like, like, like, like)
	}

	var logs []models.SystemLog
	err := q.Order("timestamp DESC, id DESC").Offset(f.Skip).Limit(f.Count).Find(&logs).Error
	return logs, err
}

func (r *LogRepository) Delete(ctx context.Context, id int) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.SystemLog{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *LogRepository) DeleteMany(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}
