package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/models"
)

// GroupRepository defines data operations for groups and their messages.
type GroupRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Group, error)
	GetByID(ctx context.Context, id uint) (models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	SaveMessage(ctx context.Context, message *models.GroupMessage) error
	ListMessages(ctx context.Context, groupID uint, before time.Time, limit int) ([]models.GroupMessage, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) SaveMessage(ctx context.Context, message *models.GroupMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *groupRepository) ListMessages(ctx context.Context, groupID uint, before time.Time, limit int) ([]models.GroupMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).
		Where("group_id = ?", groupID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.GroupMessage
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
