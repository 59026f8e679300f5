package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/models"
)

// CourseFilter narrows course listing queries.
type CourseFilter struct {
	PublishedOnly bool
}

// CourseRepository defines data operations for courses and lessons.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	AddLesson(ctx context.Context, lesson *models.Lesson) error
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	ListEnrollments(ctx context.Context, studentID uint) ([]models.Enrollment, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{}).Preload("Lessons")
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Lessons").Preload("Exams").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) AddLesson(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *courseRepository) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *courseRepository) ListEnrollments(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
