package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/models"
)

// PaymentProofFilter narrows payment proof queries.
type PaymentProofFilter struct {
	StudentID *uint
	CourseID  *uint
	Status    *string
}

// PaymentProofRepository defines data operations for payment proofs.
type PaymentProofRepository interface {
	List(ctx context.Context, filter PaymentProofFilter) ([]models.PaymentProof, error)
	GetByID(ctx context.Context, id uint) (models.PaymentProof, error)
	Create(ctx context.Context, proof *models.PaymentProof) error
	Update(ctx context.Context, proof *models.PaymentProof) error
}

type paymentProofRepository struct {
	db *gorm.DB
}

// NewPaymentProofRepository instantiates the repository.
func NewPaymentProofRepository(db *gorm.DB) PaymentProofRepository {
	return &paymentProofRepository{db: db}
}

func (r *paymentProofRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PaymentProof{}).
		Preload("Student").
		Preload("Course")
}

func (r *paymentProofRepository) List(ctx context.Context, filter PaymentProofFilter) ([]models.PaymentProof, error) {
	query := r.baseQuery(ctx)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var proofs []models.PaymentProof
	if err := query.Order("created_at DESC").Find(&proofs).Error; err != nil {
		return nil, err
	}
	return proofs, nil
}

func (r *paymentProofRepository) GetByID(ctx context.Context, id uint) (models.PaymentProof, error) {
	var proof models.PaymentProof
	if err := r.baseQuery(ctx).First(&proof, id).Error; err != nil {
		return models.PaymentProof{}, err
	}
	return proof, nil
}

func (r *paymentProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	return r.db.WithContext(ctx).Create(proof).Error
}

func (r *paymentProofRepository) Update(ctx context.Context, proof *models.PaymentProof) error {
	return r.db.WithContext(ctx).Save(proof).Error
}
