package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/models"
)

// ExamSubmissionRepository defines data operations for graded submissions.
type ExamSubmissionRepository interface {
	GetByStudentAndExam(ctx context.Context, studentID, examID uint) (models.ExamSubmission, error)
	GetByID(ctx context.Context, id uint) (models.ExamSubmission, error)
	ListByExam(ctx context.Context, examID uint) ([]models.ExamSubmission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.ExamSubmission, error)
	Create(ctx context.Context, submission *models.ExamSubmission) error
	Update(ctx context.Context, submission *models.ExamSubmission) error
}

type examSubmissionRepository struct {
	db *gorm.DB
}

// NewExamSubmissionRepository instantiates the repository.
func NewExamSubmissionRepository(db *gorm.DB) ExamSubmissionRepository {
	return &examSubmissionRepository{db: db}
}

func (r *examSubmissionRepository) GetByStudentAndExam(ctx context.Context, studentID, examID uint) (models.ExamSubmission, error) {
	var submission models.ExamSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		First(&submission).Error; err != nil {
		return models.ExamSubmission{}, err
	}
	return submission, nil
}

func (r *examSubmissionRepository) GetByID(ctx context.Context, id uint) (models.ExamSubmission, error) {
	var submission models.ExamSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.ExamSubmission{}, err
	}
	return submission, nil
}

func (r *examSubmissionRepository) ListByExam(ctx context.Context, examID uint) ([]models.ExamSubmission, error) {
	var submissions []models.ExamSubmission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("exam_id = ?", examID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *examSubmissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.ExamSubmission, error) {
	var submissions []models.ExamSubmission
	if err := r.db.WithContext(ctx).
		Preload("Exam").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *examSubmissionRepository) Create(ctx context.Context, submission *models.ExamSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *examSubmissionRepository) Update(ctx context.Context, submission *models.ExamSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
