package repository

import (
	"github.com/taskboard/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// ListRecent returns the newest entries, actor resolved. Task titles come
// from the snapshot column, so entries for deleted tasks still render.
func (r *GormActivityRepository) ListRecent(limit int) ([]models.Activity, error) {
	db, cancel := session(r.db)
	defer cancel()

	var activities []models.Activity
	err := db.
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	return activities, nil
}
