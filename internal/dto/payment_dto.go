package dto

import (
	"time"

	"github.com/hikma-academy/academy-api/internal/models"
)

// PaymentProofCreateRequest registers a payment proof for review. The
// proof image is uploaded elsewhere; only its URL travels through here.
type PaymentProofCreateRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	CourseID  uint   `json:"course_id" validate:"required,gt=0"`
	ProofURL  string `json:"proof_url" validate:"required,url"`
}

// PaymentProofDecisionRequest carries an admin approve/reject decision.
type PaymentProofDecisionRequest struct {
	Approve  bool   `json:"approve"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

// PaymentProofFilter describes query filters for listing proofs.
type PaymentProofFilter struct {
	StudentID *uint   `query:"student_id"`
	CourseID  *uint   `query:"course_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// PaymentProofResponse serializes a payment proof.
type PaymentProofResponse struct {
	ID         uint        `json:"id"`
	StudentID  uint        `json:"student_id"`
	CourseID   uint        `json:"course_id"`
	ProofURL   string      `json:"proof_url"`
	Status     string      `json:"status"`
	Feedback   string      `json:"feedback"`
	ReviewedBy *uint       `json:"reviewed_by"`
	ReviewedAt *time.Time  `json:"reviewed_at"`
	CreatedAt  time.Time   `json:"created_at"`
	Student    StudentLite `json:"student"`
	Course     CourseLite  `json:"course"`
}

// StudentLite summarizes a student without full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseLite summarizes a course in nested responses.
type CourseLite struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// NewPaymentProofResponse converts a proof model into a DTO.
func NewPaymentProofResponse(model models.PaymentProof) PaymentProofResponse {
	response := PaymentProofResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		CourseID:   model.CourseID,
		ProofURL:   model.ProofURL,
		Status:     model.Status,
		Feedback:   model.Feedback,
		ReviewedBy: model.ReviewedBy,
		ReviewedAt: model.ReviewedAt,
		CreatedAt:  model.CreatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{ID: model.Student.ID, Name: model.Student.Name, Email: model.Student.Email}
	}
	if model.Course.ID != 0 {
		response.Course = CourseLite{ID: model.Course.ID, Title: model.Course.Title, Price: model.Course.Price}
	}

	return response
}

// NewPaymentProofResponseSlice converts proof models into DTOs.
func NewPaymentProofResponseSlice(proofs []models.PaymentProof) []PaymentProofResponse {
	responses := make([]PaymentProofResponse, 0, len(proofs))
	for _, proof := range proofs {
		responses = append(responses, NewPaymentProofResponse(proof))
	}
	return responses
}
